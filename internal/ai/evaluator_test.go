package ai

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// stubProvider returns canned replies in sequence, then repeats the last.
type stubProvider struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (p *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	i := p.calls
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	p.calls++
	p.prompts = append(p.prompts, prompt)
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return p.replies[i], err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEvaluatePromptIncludesCriteria(t *testing.T) {
	p := &stubProvider{replies: []string{`{"eligible": true, "reasoning": "ok"}`}}
	e := NewLLMEvaluator(p, 0, time.Millisecond, testLogger())

	criteria := model.UserCriteria{
		Resume:   "Ten years of Go.",
		Criteria: "No agencies.",
	}
	v, err := e.Evaluate(context.Background(), "Backend role building APIs.", criteria)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Eligible {
		t.Error("expected eligible verdict")
	}

	prompt := p.prompts[0]
	for _, want := range []string{"Backend role building APIs.", "Ten years of Go.", "No agencies."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEvaluateRetriesTransientProviderFailure(t *testing.T) {
	p := &stubProvider{
		replies: []string{"", `{"eligible": false, "reasoning": "nope"}`},
		errs:    []error{&model.HTTPError{StatusCode: 503}, nil},
	}
	e := NewLLMEvaluator(p, 2, time.Millisecond, testLogger())

	v, err := e.Evaluate(context.Background(), "desc", model.UserCriteria{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", p.calls)
	}
	if v.Eligible {
		t.Error("expected not eligible")
	}
}

func TestEvaluateSalvagesMalformedReply(t *testing.T) {
	p := &stubProvider{replies: []string{"certainly! the answer is no."}}
	e := NewLLMEvaluator(p, 0, time.Millisecond, testLogger())

	v, err := e.Evaluate(context.Background(), "desc", model.UserCriteria{})
	if err != nil {
		t.Fatalf("Evaluate should absorb malformed replies: %v", err)
	}
	if v.Eligible {
		t.Error("malformed reply must default to not eligible")
	}
}

func TestNopEvaluatorNeverApproves(t *testing.T) {
	v, err := NewNopEvaluator().Evaluate(context.Background(), "desc", model.UserCriteria{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Eligible {
		t.Error("nop evaluator must never approve")
	}
}
