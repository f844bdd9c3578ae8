// Package scheduler wires up the cron job that periodically runs a scan for
// every user with stored criteria.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/jobscout-dev/jobscout/internal/scan"
)

// UserLister enumerates the users eligible for a scheduled scan.
type UserLister interface {
	ListCriteriaUsers() ([]int64, error)
}

// Runner executes one synchronous scan for a user.
type Runner interface {
	RunScan(ctx context.Context, userID int64) (scan.Summary, error)
}

// Scheduler wraps robfig/cron and manages the periodic scan cycle.
type Scheduler struct {
	cron       *cron.Cron
	users      UserLister
	runner     Runner
	spec       string // cron spec, e.g. "@every 6h"
	runOnStart bool
	logger     *slog.Logger
}

// New creates a Scheduler firing on the given cron spec.
func New(users UserLister, runner Runner, spec string, runOnStart bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		users:      users,
		runner:     runner,
		spec:       spec,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Start registers the job and starts the scheduler. When configured, one
// cycle runs immediately so a fresh deployment does not sit idle until the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)

	if s.runOnStart {
		go s.RunCycle(ctx)
	}
	return nil
}

// Stop shuts the scheduler down and waits for a running cron callback.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunCycle runs one scan for every user with criteria. A failure for one
// user never blocks the others.
func (s *Scheduler) RunCycle(ctx context.Context) {
	userIDs, err := s.users.ListCriteriaUsers()
	if err != nil {
		s.logger.Error("listing users failed", "error", err)
		return
	}
	if len(userIDs) == 0 {
		s.logger.Info("no users with criteria, nothing to scan")
		return
	}

	s.logger.Info("scan cycle started", "users", len(userIDs))
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			s.logger.Info("scan cycle interrupted", "error", ctx.Err())
			return
		}
		summary, err := s.runner.RunScan(ctx, userID)
		switch {
		case errors.Is(err, scan.ErrAlreadyActive):
			s.logger.Warn("skipping user with active scan", "user", userID)
		case errors.Is(err, scan.ErrNoCriteria):
			// Criteria deleted between listing and running.
			s.logger.Warn("user lost criteria mid-cycle", "user", userID)
		case err != nil:
			s.logger.Error("scan failed to start", "user", userID, "error", err)
		case summary.Outcome == scan.OutcomeFailed:
			s.logger.Error("scan failed", "user", userID, "message", summary.Message)
		}
	}
	s.logger.Info("scan cycle complete")
}

// Ensure the controller satisfies the scheduler's runner contract.
var _ Runner = (*scan.Controller)(nil)
