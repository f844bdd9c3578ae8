package ai

import "context"

// Provider sends a prompt to a scoring model and returns the raw text reply.
// Used only by Evaluator; not exported to the rest of the system.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
