package store

import (
	"database/sql"
	"fmt"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// Scan control flags live in the same database as the jobs so that a stop
// request survives the requesting process and can be observed by whichever
// process is driving the scan.

// SetActive records whether a scan is running for the user.
func (s *SQLiteStore) SetActive(userID int64, active bool) error {
	_, err := s.db.Exec(
		`INSERT INTO scan_control (user_id, active) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET active = excluded.active`,
		userID, active,
	)
	if err != nil {
		return fmt.Errorf("setting scan active for user %d: %w", userID, err)
	}
	return nil
}

// IsActive reports whether a scan is currently marked running for the user.
func (s *SQLiteStore) IsActive(userID int64) (bool, error) {
	var active bool
	err := s.db.QueryRow(
		"SELECT active FROM scan_control WHERE user_id = ?", userID,
	).Scan(&active)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking scan active for user %d: %w", userID, err)
	}
	return active, nil
}

// RequestStop raises the level-triggered stop flag. It stays set until the
// scanner acknowledges it via ClearStop.
func (s *SQLiteStore) RequestStop(userID int64) error {
	return s.setStop(userID, true)
}

// ClearStop lowers the stop flag. Called by the scanner on acknowledgment,
// never by the requester.
func (s *SQLiteStore) ClearStop(userID int64) error {
	return s.setStop(userID, false)
}

func (s *SQLiteStore) setStop(userID int64, stop bool) error {
	_, err := s.db.Exec(
		`INSERT INTO scan_control (user_id, stop_requested) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET stop_requested = excluded.stop_requested`,
		userID, stop,
	)
	if err != nil {
		return fmt.Errorf("setting stop flag for user %d: %w", userID, err)
	}
	return nil
}

// StopRequested reports whether a stop has been requested for the user.
func (s *SQLiteStore) StopRequested(userID int64) (bool, error) {
	var stop bool
	err := s.db.QueryRow(
		"SELECT stop_requested FROM scan_control WHERE user_id = ?", userID,
	).Scan(&stop)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking stop flag for user %d: %w", userID, err)
	}
	return stop, nil
}

// Status returns the user's scan flags together with live counters.
func (s *SQLiteStore) Status(userID int64) (model.ScanStatus, error) {
	var st model.ScanStatus

	err := s.db.QueryRow(
		"SELECT active, stop_requested FROM scan_control WHERE user_id = ?", userID,
	).Scan(&st.Active, &st.StopRequested)
	if err != nil && err != sql.ErrNoRows {
		return st, fmt.Errorf("loading scan flags for user %d: %w", userID, err)
	}

	err = s.db.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM discovered_jobs WHERE user_id = ?),
			(SELECT COUNT(*) FROM approved_jobs WHERE user_id = ? AND NOT archived AND NOT dismissed),
			(SELECT COUNT(*) FROM approved_jobs WHERE user_id = ? AND applied_at IS NOT NULL),
			(SELECT COUNT(*) FROM discovered_jobs WHERE user_id = ? AND analyzed)`,
		userID, userID, userID, userID,
	).Scan(&st.Discovered, &st.Approved, &st.Applied, &st.Analyzed)
	if err != nil {
		return st, fmt.Errorf("loading scan counters for user %d: %w", userID, err)
	}

	return st, nil
}

// ResetStaleActive clears every active flag. Run at process startup: a flag
// still set at boot belongs to a scan that cannot have survived the restart.
func (s *SQLiteStore) ResetStaleActive() (int, error) {
	res, err := s.db.Exec("UPDATE scan_control SET active = FALSE WHERE active = TRUE")
	if err != nil {
		return 0, fmt.Errorf("resetting stale scan flags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("resetting stale scan flags: %w", err)
	}
	return int(n), nil
}
