// Package scan drives the per-user pipeline: enumerate searches, crawl
// result pages, deduplicate, fetch detail, filter, evaluate, approve. One
// run is strictly sequential; concurrency exists only across users.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobscout-dev/jobscout/internal/extract"
	"github.com/jobscout-dev/jobscout/internal/filter"
	"github.com/jobscout-dev/jobscout/internal/model"
	"github.com/jobscout-dev/jobscout/internal/search"
)

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
	OutcomeFailed    Outcome = "failed"
)

// ErrAlreadyActive is returned when a scan is already running for the user.
var ErrAlreadyActive = errors.New("a scan is already active for this user")

// Summary is the result of one run.
type Summary struct {
	Outcome       Outcome
	NewJobs       int // discovered rows added during this run
	LinksExamined int // job links seen across all result pages
	QueriesTotal  int
	QueriesDone   int
	NoCriteria    bool // zero queries because the user has no keywords/locations
	Message       string
}

// Scanner owns the pipeline for a single run. Safe to reuse across runs;
// the registry enforces one active run per user.
type Scanner struct {
	store    model.JobStore
	registry model.ScanRegistry
	fetcher  model.PageFetcher
	eval     model.Evaluator
	notifier model.Notifier
	logger   *slog.Logger

	// Jobs still missing detail are reprocessed on every run; after
	// maxDetailAttempts tries they are retired instead. Zero means retry
	// forever.
	maxDetailAttempts int
}

// NewScanner wires a scanner with all its dependencies.
func NewScanner(
	store model.JobStore,
	registry model.ScanRegistry,
	fetcher model.PageFetcher,
	eval model.Evaluator,
	notifier model.Notifier,
	maxDetailAttempts int,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		store:             store,
		registry:          registry,
		fetcher:           fetcher,
		eval:              eval,
		notifier:          notifier,
		maxDetailAttempts: maxDetailAttempts,
		logger:            logger,
	}
}

// Run executes one scan for the user described by criteria. It returns
// ErrAlreadyActive when the registry shows a running scan. Faults inside the
// run surface as OutcomeFailed, never as an error: whatever happens, the
// registry's active flag is lowered before Run returns.
func (s *Scanner) Run(ctx context.Context, criteria model.UserCriteria) (Summary, error) {
	userID := criteria.UserID

	active, err := s.registry.IsActive(userID)
	if err != nil {
		return Summary{}, fmt.Errorf("checking active flag for user %d: %w", userID, err)
	}
	if active {
		return Summary{}, ErrAlreadyActive
	}
	if err := s.registry.ClearStop(userID); err != nil {
		return Summary{}, fmt.Errorf("clearing stop flag for user %d: %w", userID, err)
	}
	if err := s.registry.SetActive(userID, true); err != nil {
		return Summary{}, fmt.Errorf("raising active flag for user %d: %w", userID, err)
	}

	summary := s.runLocked(ctx, criteria)

	// Termination: lower the flags no matter how the loop exited.
	if err := s.registry.SetActive(userID, false); err != nil {
		s.logger.Error("failed to lower active flag", "user", userID, "error", err)
	}
	if err := s.registry.ClearStop(userID); err != nil {
		s.logger.Error("failed to clear stop flag", "user", userID, "error", err)
	}

	s.logger.Info("scan finished",
		"user", userID,
		"outcome", summary.Outcome,
		"new_jobs", summary.NewJobs,
		"links_examined", summary.LinksExamined,
		"queries", fmt.Sprintf("%d/%d", summary.QueriesDone, summary.QueriesTotal),
	)
	return summary, nil
}

// runLocked is the run body, entered with the active flag held. A panic is
// converted to OutcomeFailed so the caller can still clean up the registry.
func (s *Scanner) runLocked(ctx context.Context, criteria model.UserCriteria) (summary Summary) {
	userID := criteria.UserID

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan panicked", "user", userID, "panic", r)
			summary.Outcome = OutcomeFailed
			summary.Message = fmt.Sprintf("internal fault: %v", r)
		}
	}()

	startCount, err := s.store.CountJobs(userID)
	if err != nil {
		summary.Outcome = OutcomeFailed
		summary.Message = fmt.Sprintf("counting jobs: %v", err)
		return summary
	}

	queries := search.Enumerate(criteria)
	summary.QueriesTotal = len(queries)
	if len(queries) == 0 {
		summary.Outcome = OutcomeCompleted
		summary.NoCriteria = true
		summary.Message = "no search criteria defined"
		return summary
	}

	excl := filter.NewExclusionFilter(criteria.ExclusionKeywords)
	approved := make([]model.ApprovedJob, 0, 4)
	summary.Outcome = OutcomeCompleted

	for i, query := range queries {
		if s.stopRequested(ctx, userID) {
			s.ackStop(userID)
			summary.Outcome = OutcomeStopped
			summary.Message = "stop request acknowledged"
			break
		}

		links := s.processQuery(ctx, query, criteria, excl, &approved)
		summary.LinksExamined += links
		summary.QueriesDone = i + 1
		s.logger.Debug("query done",
			"user", userID,
			"query", fmt.Sprintf("%d/%d", i+1, len(queries)),
			"keyword", query.Keyword,
			"location", query.Location,
			"links", links,
		)

		// A stop honored inside the query still has to surface as Stopped.
		if s.stopRequested(ctx, userID) {
			s.ackStop(userID)
			summary.Outcome = OutcomeStopped
			summary.Message = "stop request acknowledged"
			break
		}
	}

	endCount, err := s.store.CountJobs(userID)
	if err != nil {
		s.logger.Error("failed to count jobs after run", "user", userID, "error", err)
	} else {
		summary.NewJobs = endCount - startCount
	}

	if len(approved) > 0 && s.notifier != nil {
		if err := s.notifier.Notify(approved); err != nil {
			s.logger.Error("approval notification failed", "user", userID, "error", err)
		}
	}
	return summary
}

// processQuery crawls one results page and drives the queued jobs.
// Returns the number of job links examined on the page.
func (s *Scanner) processQuery(
	ctx context.Context,
	query model.SearchQuery,
	criteria model.UserCriteria,
	excl *filter.ExclusionFilter,
	approved *[]model.ApprovedJob,
) int {
	userID := criteria.UserID

	page, err := s.fetcher.Fetch(ctx, query.URL)
	if err != nil || page == nil {
		if err != nil {
			s.logger.Debug("results page fetch aborted", "user", userID, "url", query.URL, "error", err)
		}
		return 0
	}

	links := extract.Links(page)
	var queue []extract.JobLink
	for _, link := range links {
		inserted, err := s.store.InsertStub(userID, link.JobID, link.URL, query.Location, query.Keyword)
		if err != nil {
			s.logger.Error("stub insert failed", "user", userID, "job_id", link.JobID, "error", err)
			continue
		}
		if inserted {
			queue = append(queue, link)
			continue
		}
		needs, err := s.store.NeedsDetail(userID, link.JobID)
		if err != nil {
			s.logger.Error("detail check failed", "user", userID, "job_id", link.JobID, "error", err)
			continue
		}
		if needs && s.underAttemptCap(userID, link.JobID) {
			queue = append(queue, link)
		}
	}

	for processed, link := range queue {
		if s.stopRequested(ctx, userID) {
			s.logger.Info("stop observed mid-query",
				"user", userID, "processed", processed, "queued", len(queue))
			break
		}
		if err := s.processJob(ctx, link, criteria, excl, approved); err != nil {
			s.logger.Error("job processing failed", "user", userID, "job_id", link.JobID, "error", err)
		}
	}

	return len(links)
}

// processJob runs the detail stage for one job: fetch, filter, evaluate,
// approve. Errors are returned for logging but never abort the run; the job
// ends up analyzed on every path except a mid-job stop.
func (s *Scanner) processJob(
	ctx context.Context,
	link extract.JobLink,
	criteria model.UserCriteria,
	excl *filter.ExclusionFilter,
	approved *[]model.ApprovedJob,
) error {
	userID := criteria.UserID

	if err := s.store.RecordDetailAttempt(userID, link.JobID); err != nil {
		s.logger.Debug("detail attempt not recorded", "user", userID, "job_id", link.JobID, "error", err)
	}

	var title, desc string
	page, err := s.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return err // context cancellation; job stays unanalyzed for a later run
	}
	if page != nil {
		title = extract.Title(page)
		desc = extract.Description(page)
	}

	if s.stopRequested(ctx, userID) {
		return nil
	}

	if title != "" && excl.Matches(title) {
		return s.store.MarkAnalyzed(userID, link.JobID)
	}

	// Fallback: the guest detail endpoint often works when the page is
	// served as a login wall.
	if title == "" || desc == "" {
		guest, err := s.fetcher.FetchGuest(ctx, link.JobID)
		if err != nil {
			return err
		}
		if guest != nil {
			if title == "" {
				title = extract.Title(guest)
			}
			if desc == "" {
				desc = extract.Description(guest)
			}
		}
	}

	// The fallback can surface a different title; re-check exclusions.
	if title != "" && excl.Matches(title) {
		return s.store.MarkAnalyzed(userID, link.JobID)
	}

	if s.stopRequested(ctx, userID) {
		return nil
	}

	if title != "" || desc != "" {
		var titlePtr, descPtr *string
		if title != "" {
			titlePtr = &title
		}
		if desc != "" {
			descPtr = &desc
		}
		if err := s.store.UpdateDetails(userID, link.JobID, titlePtr, descPtr); err != nil {
			s.logger.Error("detail update failed", "user", userID, "job_id", link.JobID, "error", err)
		}
	}

	if s.stopRequested(ctx, userID) {
		return nil
	}

	if desc != "" {
		s.evaluateAndApprove(ctx, link, title, desc, criteria, approved)
	}

	// Unconditional: excluded, evaluated, or errored, this job is done and
	// will never be reprocessed by a future scan.
	return s.store.MarkAnalyzed(userID, link.JobID)
}

// evaluateAndApprove sends the job to the evaluator and records an approval
// on an eligible verdict. Evaluator failures skip only this job.
func (s *Scanner) evaluateAndApprove(
	ctx context.Context,
	link extract.JobLink,
	title, desc string,
	criteria model.UserCriteria,
	approved *[]model.ApprovedJob,
) {
	userID := criteria.UserID

	verdict, err := s.eval.Evaluate(ctx, desc, criteria)
	if err != nil {
		s.logger.Error("evaluation failed", "user", userID, "job_id", link.JobID, "error", err)
		return
	}
	if !verdict.Eligible {
		return
	}

	newlyApproved, err := s.store.Approve(userID, link.JobID, verdict.Reasoning)
	if err != nil {
		s.logger.Error("approval failed", "user", userID, "job_id", link.JobID, "error", err)
		return
	}
	if !newlyApproved {
		return
	}

	s.logger.Info("job approved",
		"user", userID,
		"job_id", link.JobID,
		"title", title,
		"url", link.URL,
	)
	job := model.ApprovedJob{
		UserID: userID,
		JobID:  link.JobID,
		URL:    link.URL,
		Reason: verdict.Reasoning,
	}
	if title != "" {
		job.Title = &title
	}
	*approved = append(*approved, job)
}

// stopRequested checks both the local cancellation signal and the persisted
// stop flag. Consulted at every suspension boundary so a stop lands within
// one job's latency.
func (s *Scanner) stopRequested(ctx context.Context, userID int64) bool {
	if ctx.Err() != nil {
		return true
	}
	stop, err := s.registry.StopRequested(userID)
	if err != nil {
		s.logger.Error("stop flag read failed", "user", userID, "error", err)
		return false
	}
	return stop
}

// ackStop lowers the persisted stop flag. Only the scanner does this; the
// requester's flag stays readable until this acknowledgment.
func (s *Scanner) ackStop(userID int64) {
	if err := s.registry.ClearStop(userID); err != nil {
		s.logger.Error("stop acknowledgment failed", "user", userID, "error", err)
	}
}

// underAttemptCap reports whether the job may be queued for another detail
// attempt. A cap of zero preserves the historical retry-forever behavior.
func (s *Scanner) underAttemptCap(userID, jobID int64) bool {
	if s.maxDetailAttempts <= 0 {
		return true
	}
	attempts, err := s.store.DetailAttempts(userID, jobID)
	if err != nil {
		s.logger.Error("attempt count read failed", "user", userID, "job_id", jobID, "error", err)
		return true
	}
	return attempts < s.maxDetailAttempts
}
