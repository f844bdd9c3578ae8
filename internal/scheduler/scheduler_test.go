package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jobscout-dev/jobscout/internal/scan"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLister struct {
	users []int64
	err   error
}

func (f *fakeLister) ListCriteriaUsers() ([]int64, error) { return f.users, f.err }

type fakeRunner struct {
	mu      sync.Mutex
	ran     []int64
	errFor  map[int64]error
	outcome scan.Outcome
}

func (f *fakeRunner) RunScan(ctx context.Context, userID int64) (scan.Summary, error) {
	f.mu.Lock()
	f.ran = append(f.ran, userID)
	f.mu.Unlock()
	if err := f.errFor[userID]; err != nil {
		return scan.Summary{}, err
	}
	outcome := f.outcome
	if outcome == "" {
		outcome = scan.OutcomeCompleted
	}
	return scan.Summary{Outcome: outcome}, nil
}

func TestRunCycleScansEveryUser(t *testing.T) {
	runner := &fakeRunner{}
	s := New(&fakeLister{users: []int64{1, 2, 3}}, runner, "@every 6h", false, discardLogger())

	s.RunCycle(context.Background())

	if len(runner.ran) != 3 {
		t.Fatalf("ran %v, want all three users", runner.ran)
	}
}

func TestRunCycleContinuesPastFailures(t *testing.T) {
	runner := &fakeRunner{
		errFor: map[int64]error{
			1: scan.ErrAlreadyActive,
			2: errors.New("db locked"),
		},
	}
	s := New(&fakeLister{users: []int64{1, 2, 3}}, runner, "@every 6h", false, discardLogger())

	s.RunCycle(context.Background())

	if len(runner.ran) != 3 {
		t.Fatalf("ran %v, want all three users despite failures", runner.ran)
	}
}

func TestRunCycleStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	s := New(&fakeLister{users: []int64{1, 2}}, runner, "@every 6h", false, discardLogger())

	s.RunCycle(ctx)

	if len(runner.ran) != 0 {
		t.Errorf("ran %v, want none on a cancelled context", runner.ran)
	}
}

func TestRunCycleWithNoUsers(t *testing.T) {
	runner := &fakeRunner{}
	s := New(&fakeLister{}, runner, "@every 6h", false, discardLogger())

	s.RunCycle(context.Background())

	if len(runner.ran) != 0 {
		t.Errorf("ran %v, want none", runner.ran)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&fakeLister{}, &fakeRunner{}, "every day at noonish", false, discardLogger())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestStartAndStop(t *testing.T) {
	s := New(&fakeLister{}, &fakeRunner{}, "@every 6h", false, discardLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
