// Package ai scores job descriptions against a user's resume and criteria
// via an LLM provider, normalizing whatever comes back into a Verdict.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jobscout-dev/jobscout/internal/model"
	"github.com/jobscout-dev/jobscout/internal/retry"
)

// LLMEvaluator implements model.Evaluator using an LLM provider.
type LLMEvaluator struct {
	provider   Provider
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewLLMEvaluator creates an evaluator. Transient provider failures (429,
// 5xx, network) are retried up to maxRetries times before giving up.
func NewLLMEvaluator(provider Provider, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *LLMEvaluator {
	return &LLMEvaluator{
		provider:   provider,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Evaluate renders the eligibility prompt and parses the reply. A reply the
// strict parser rejects goes through salvage; the result is always a
// well-formed Verdict when err is nil.
func (e *LLMEvaluator) Evaluate(ctx context.Context, description string, criteria model.UserCriteria) (model.Verdict, error) {
	var promptBuf bytes.Buffer
	err := EligibilityTemplate.Execute(&promptBuf, struct {
		Description, Resume, Criteria string
	}{
		Description: sanitizeText(description),
		Resume:      sanitizeText(criteria.Resume),
		Criteria:    sanitizeText(criteria.Criteria),
	})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("render prompt: %w", err)
	}

	var raw string
	err = retry.Do(ctx, e.maxRetries, e.baseDelay, func() error {
		var callErr error
		raw, callErr = e.provider.Complete(ctx, promptBuf.String())
		return callErr
	})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("llm complete: %w", err)
	}

	verdict, salvaged := ParseVerdict(raw)
	if salvaged {
		e.logger.Warn("evaluator reply required salvage parsing", "reply_prefix", prefix(raw, 120))
	}
	return verdict, nil
}

// sanitizeText replaces common typographic Unicode punctuation with ASCII
// equivalents and drops any remaining non-ASCII bytes; some model endpoints
// choke on mixed encodings in long documents.
func sanitizeText(text string) string {
	replacer := strings.NewReplacer(
		"‑", "-", // non-breaking hyphen
		"–", "-", // en dash
		"—", "-", // em dash
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
	)
	text = replacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
