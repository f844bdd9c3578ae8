package store

import (
	"database/sql"
	"fmt"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// Approved-job mutations used by the review surface. These sit outside the
// scan loop but share the approval invariant: one row per discovered job.

// ListApproved returns the user's approved jobs joined with their discovered
// rows, newest approval first. Archived and dismissed rows are excluded
// unless includeArchived is set (dismissed rows are never listed).
func (s *SQLiteStore) ListApproved(userID int64, includeArchived bool) ([]model.ApprovedJob, error) {
	query := `
		SELECT a.id, a.user_id, a.discovered_job_id, a.reason, a.approved_at,
		       a.applied_at, a.archived, a.dismissed,
		       d.job_id, d.title, d.url, d.location, d.keyword
		FROM approved_jobs a
		JOIN discovered_jobs d ON a.discovered_job_id = d.id
		WHERE a.user_id = ? AND NOT a.dismissed`
	if !includeArchived {
		query += " AND NOT a.archived"
	}
	query += " ORDER BY a.approved_at DESC"

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing approved jobs for user %d: %w", userID, err)
	}
	defer rows.Close()

	var jobs []model.ApprovedJob
	for rows.Next() {
		var j model.ApprovedJob
		var reason, title sql.NullString
		var applied sql.NullTime
		err := rows.Scan(&j.RowID, &j.UserID, &j.DiscoveredRowID, &reason, &j.Approved,
			&applied, &j.Archived, &j.Dismissed,
			&j.JobID, &title, &j.URL, &j.Location, &j.Keyword)
		if err != nil {
			return nil, fmt.Errorf("listing approved jobs for user %d: %w", userID, err)
		}
		if reason.Valid {
			j.Reason = reason.String
		}
		if title.Valid {
			j.Title = &title.String
		}
		if applied.Valid {
			j.Applied = &applied.Time
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// MarkApplied stamps the applied time and archives the row. A row already
// applied is left alone and the call returns false.
func (s *SQLiteStore) MarkApplied(userID, approvedRowID int64) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE approved_jobs
		 SET applied_at = CURRENT_TIMESTAMP, archived = TRUE
		 WHERE user_id = ? AND id = ? AND applied_at IS NULL`,
		userID, approvedRowID,
	)
	if err != nil {
		return false, fmt.Errorf("marking approval %d applied: %w", approvedRowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking approval %d applied: %w", approvedRowID, err)
	}
	return n > 0, nil
}

// Dismiss soft-deletes an approved job. The row stays so that the approval
// invariant keeps the job from being re-approved by a later scan.
func (s *SQLiteStore) Dismiss(userID, approvedRowID int64) (bool, error) {
	res, err := s.db.Exec(
		"UPDATE approved_jobs SET dismissed = TRUE WHERE user_id = ? AND id = ?",
		userID, approvedRowID,
	)
	if err != nil {
		return false, fmt.Errorf("dismissing approval %d: %w", approvedRowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("dismissing approval %d: %w", approvedRowID, err)
	}
	return n > 0, nil
}

// Archive hides an approved job from the active list without dismissing it.
func (s *SQLiteStore) Archive(userID, approvedRowID int64) (bool, error) {
	res, err := s.db.Exec(
		"UPDATE approved_jobs SET archived = TRUE WHERE user_id = ? AND id = ?",
		userID, approvedRowID,
	)
	if err != nil {
		return false, fmt.Errorf("archiving approval %d: %w", approvedRowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archiving approval %d: %w", approvedRowID, err)
	}
	return n > 0, nil
}

// ArchiveAllApplied archives every applied, not-yet-archived approval.
func (s *SQLiteStore) ArchiveAllApplied(userID int64) (int, error) {
	res, err := s.db.Exec(
		`UPDATE approved_jobs SET archived = TRUE
		 WHERE user_id = ? AND applied_at IS NOT NULL AND NOT archived AND NOT dismissed`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("archiving applied jobs for user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archiving applied jobs for user %d: %w", userID, err)
	}
	return int(n), nil
}
