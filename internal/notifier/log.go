package notifier

import (
	"log/slog"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly approved jobs to the given logger as structured
// messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each approval via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each approved job with title, location, URL, and the
// evaluator's reasoning. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.ApprovedJob) error {
	for _, j := range jobs {
		args := []any{"job_id", j.JobID, "location", j.Location, "url", j.URL, "reason", j.Reason}
		if j.Title != nil {
			args = append(args, "title", *j.Title)
		}
		n.logger.Info("job approved", args...)
	}
	return nil
}
