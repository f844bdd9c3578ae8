package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// CriteriaSource reads a user's stored search profile.
type CriteriaSource interface {
	GetCriteria(userID int64) (*model.UserCriteria, error)
}

// ErrNoCriteria is returned by StartScan when the user has no stored profile.
var ErrNoCriteria = errors.New("no search criteria stored for this user")

// Controller manages scan lifecycles inside one process: it launches runs in
// goroutines and cancels them on a local stop. The persisted registry flags
// remain the cross-process truth; the in-memory map only adds fast
// cancellation for scans this process owns.
type Controller struct {
	scanner  *Scanner
	source   CriteriaSource
	registry model.ScanRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewController builds a controller around a shared scanner.
func NewController(scanner *Scanner, source CriteriaSource, registry model.ScanRegistry, logger *slog.Logger) *Controller {
	return &Controller{
		scanner:  scanner,
		source:   source,
		registry: registry,
		logger:   logger,
		cancels:  make(map[int64]context.CancelFunc),
	}
}

// StartScan launches a background scan for the user. It returns
// ErrAlreadyActive when a run is in flight (here or in another process) and
// ErrNoCriteria when the user has nothing to scan with.
func (c *Controller) StartScan(ctx context.Context, userID int64) error {
	criteria, err := c.source.GetCriteria(userID)
	if err != nil {
		return fmt.Errorf("loading criteria for user %d: %w", userID, err)
	}
	if criteria == nil {
		return ErrNoCriteria
	}

	c.mu.Lock()
	if _, running := c.cancels[userID]; running {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	// Claim the slot before the goroutine starts so a racing StartScan for
	// the same user cannot slip through. Run re-checks the persisted flag,
	// which covers other processes.
	runCtx, cancel := context.WithCancel(ctx)
	c.cancels[userID] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.cancels, userID)
			c.mu.Unlock()
			cancel()
		}()

		summary, err := c.scanner.Run(runCtx, *criteria)
		if err != nil {
			if errors.Is(err, ErrAlreadyActive) {
				c.logger.Warn("scan already active elsewhere", "user", userID)
			} else {
				c.logger.Error("scan could not start", "user", userID, "error", err)
			}
			return
		}
		if summary.Outcome == OutcomeFailed {
			c.logger.Error("scan failed", "user", userID, "message", summary.Message)
		}
	}()
	return nil
}

// RunScan executes a scan synchronously, for one-shot CLI invocations.
func (c *Controller) RunScan(ctx context.Context, userID int64) (Summary, error) {
	criteria, err := c.source.GetCriteria(userID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading criteria for user %d: %w", userID, err)
	}
	if criteria == nil {
		return Summary{}, ErrNoCriteria
	}
	return c.scanner.Run(ctx, *criteria)
}

// StopScan requests a stop for the user's scan. The persisted flag reaches
// scans owned by any process; the local cancel shortcuts scans owned here.
// The request is a no-op that still succeeds when no scan is active, matching
// the level-triggered flag semantics: an already-lowered flag stays lowered.
func (c *Controller) StopScan(userID int64) error {
	active, err := c.registry.IsActive(userID)
	if err != nil {
		return fmt.Errorf("checking active flag for user %d: %w", userID, err)
	}
	if !active {
		return nil
	}
	if err := c.registry.RequestStop(userID); err != nil {
		return fmt.Errorf("raising stop flag for user %d: %w", userID, err)
	}

	c.mu.Lock()
	cancel, owned := c.cancels[userID]
	c.mu.Unlock()
	if owned {
		cancel()
	}
	return nil
}

// Status reports the user's registry flags and counters.
func (c *Controller) Status(userID int64) (model.ScanStatus, error) {
	return c.registry.Status(userID)
}

// Wait blocks until all scans launched by this controller have finished.
// Called during shutdown after the parent context is cancelled.
func (c *Controller) Wait() {
	c.wg.Wait()
}
