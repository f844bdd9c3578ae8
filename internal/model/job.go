package model

import (
	"context"
	"time"
)

// DiscoveredJob is one job posting found for one user. Identity is
// (UserID, JobID) where JobID is the listing site's numeric posting ID.
// Title and Description stay nil until a detail fetch succeeds.
type DiscoveredJob struct {
	RowID       int64
	UserID      int64
	JobID       int64
	URL         string
	Location    string
	Keyword     string // search keyword that surfaced this job
	Title       *string
	Description *string
	Analyzed    bool
	Discovered  time.Time
}

// ApprovedJob is a positive evaluator verdict recorded against a discovered
// job. At most one row exists per (UserID, DiscoveredRowID).
type ApprovedJob struct {
	RowID           int64
	UserID          int64
	DiscoveredRowID int64
	Reason          string
	Approved        time.Time
	Applied         *time.Time
	Archived        bool
	Dismissed       bool

	// Joined from the discovered row for display.
	JobID    int64
	Title    *string
	URL      string
	Location string
	Keyword  string
}

// ScanStatus is a point-in-time snapshot of one user's scan state.
type ScanStatus struct {
	Active        bool
	StopRequested bool
	Discovered    int
	Approved      int
	Applied       int
	Analyzed      int
}

// SearchQuery is one enumerated search: a (keyword, location) pair with the
// fully formed results-page URL. Derived from criteria, never persisted.
type SearchQuery struct {
	Keyword  string
	Location string
	URL      string
}

// UserCriteria is a user's saved search configuration.
type UserCriteria struct {
	UserID            int64
	Keywords          []string
	Locations         []string
	ExclusionKeywords []string
	Resume            string // plain-text resume fed to the evaluator
	Criteria          string // free-form evaluation guidance for the evaluator
}

// Verdict is the evaluator's answer for one job description.
type Verdict struct {
	Eligible  bool
	Reasoning string
}

// JobStore is the durable per-user dedup and approval store.
type JobStore interface {
	// InsertStub records a newly discovered job. Returns true only when the
	// (user, jobID) pair did not exist before; an existing row is untouched.
	InsertStub(userID, jobID int64, url, location, keyword string) (bool, error)
	// NeedsDetail reports whether no title has been recorded for the job yet.
	NeedsDetail(userID, jobID int64) (bool, error)
	// UpdateDetails backfills title and/or description. Nil fields are left alone.
	UpdateDetails(userID, jobID int64, title, description *string) error
	// MarkAnalyzed flips the analyzed flag. Monotonic: never unset by this path.
	MarkAnalyzed(userID, jobID int64) error
	// Approve inserts an approval for the discovered job. Returns false without
	// error when the discovered row does not exist; duplicates are ignored.
	Approve(userID, jobID int64, reason string) (bool, error)
	// CountJobs returns the number of discovered rows for the user.
	CountJobs(userID int64) (int, error)
	// RecordDetailAttempt bumps the job's detail-processing attempt counter.
	RecordDetailAttempt(userID, jobID int64) error
	// DetailAttempts returns the job's detail-processing attempt count.
	DetailAttempts(userID, jobID int64) (int, error)
}

// ScanRegistry tracks per-user scan activity and stop requests. The stop flag
// is level-triggered: it stays set until the scanning side acknowledges it.
type ScanRegistry interface {
	SetActive(userID int64, active bool) error
	IsActive(userID int64) (bool, error)
	RequestStop(userID int64) error
	StopRequested(userID int64) (bool, error)
	ClearStop(userID int64) error
	Status(userID int64) (ScanStatus, error)
}

// PageFetcher retrieves raw page content. A nil slice with nil error means
// the page is unavailable (non-200, network failure, empty body) and the
// caller should skip it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	// FetchGuest retrieves the guest detail document for a job ID, the
	// fallback path when the posting page itself yields no detail.
	FetchGuest(ctx context.Context, jobID int64) ([]byte, error)
}

// Evaluator scores a job description against a user's resume and criteria.
// Implementations must always return a well-formed Verdict on nil error.
type Evaluator interface {
	Evaluate(ctx context.Context, description string, criteria UserCriteria) (Verdict, error)
}

// Notifier announces newly approved jobs.
type Notifier interface {
	Notify(jobs []ApprovedJob) error
}
