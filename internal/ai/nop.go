package ai

import (
	"context"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// NopEvaluator is used when AI evaluation is disabled. It never approves.
type NopEvaluator struct{}

// NewNopEvaluator returns a NopEvaluator.
func NewNopEvaluator() *NopEvaluator {
	return &NopEvaluator{}
}

// Evaluate returns a not-eligible verdict with no LLM calls.
func (n *NopEvaluator) Evaluate(_ context.Context, _ string, _ model.UserCriteria) (model.Verdict, error) {
	return model.Verdict{Eligible: false, Reasoning: "AI evaluation is disabled."}, nil
}
