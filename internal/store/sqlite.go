package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// SQLiteStore persists discovered jobs, approvals, per-user criteria, and
// scan control flags in a single SQLite database. It backs both the
// model.JobStore and model.ScanRegistry interfaces.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS discovered_jobs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL,
		job_id      INTEGER NOT NULL,
		url         TEXT NOT NULL,
		location    TEXT NOT NULL,
		keyword     TEXT NOT NULL,
		title       TEXT,
		description TEXT,
		analyzed    BOOLEAN DEFAULT FALSE,
		detail_attempts INTEGER DEFAULT 0,
		discovered  DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, job_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_discovered_jobs_user ON discovered_jobs(user_id)`,
	`CREATE TABLE IF NOT EXISTS approved_jobs (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id           INTEGER NOT NULL,
		discovered_job_id INTEGER NOT NULL REFERENCES discovered_jobs(id) ON DELETE CASCADE,
		reason            TEXT,
		approved_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
		applied_at        DATETIME,
		archived          BOOLEAN DEFAULT FALSE,
		dismissed         BOOLEAN DEFAULT FALSE,
		UNIQUE(user_id, discovered_job_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_approved_jobs_user ON approved_jobs(user_id)`,
	`CREATE TABLE IF NOT EXISTS scan_control (
		user_id        INTEGER PRIMARY KEY,
		active         BOOLEAN DEFAULT FALSE,
		stop_requested BOOLEAN DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS user_criteria (
		user_id  INTEGER PRIMARY KEY,
		criteria TEXT NOT NULL
	)`,
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	// Scans for different users may run concurrently; serialize writers
	// through a single connection so sqlite never reports SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// InsertStub records a discovered job. An existing (user, job_id) row is left
// untouched and the call returns false.
func (s *SQLiteStore) InsertStub(userID, jobID int64, url, location, keyword string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO discovered_jobs (user_id, job_id, url, location, keyword)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, jobID, url, location, keyword,
	)
	if err != nil {
		return false, fmt.Errorf("inserting stub for job %d: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting stub for job %d: %w", jobID, err)
	}
	return n > 0, nil
}

// NeedsDetail returns true when the job has no title yet (or no row at all).
func (s *SQLiteStore) NeedsDetail(userID, jobID int64) (bool, error) {
	var title sql.NullString
	err := s.db.QueryRow(
		"SELECT title FROM discovered_jobs WHERE user_id = ? AND job_id = ?",
		userID, jobID,
	).Scan(&title)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking detail for job %d: %w", jobID, err)
	}
	return !title.Valid, nil
}

// UpdateDetails backfills title and/or description. A nil field keeps the
// stored value.
func (s *SQLiteStore) UpdateDetails(userID, jobID int64, title, description *string) error {
	_, err := s.db.Exec(
		`UPDATE discovered_jobs
		 SET title = COALESCE(?, title), description = COALESCE(?, description)
		 WHERE user_id = ? AND job_id = ?`,
		title, description, userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("updating details for job %d: %w", jobID, err)
	}
	return nil
}

// MarkAnalyzed flips the analyzed flag. Once set it is never cleared here.
func (s *SQLiteStore) MarkAnalyzed(userID, jobID int64) error {
	_, err := s.db.Exec(
		"UPDATE discovered_jobs SET analyzed = TRUE WHERE user_id = ? AND job_id = ?",
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("marking job %d analyzed: %w", jobID, err)
	}
	return nil
}

// Approve records an approval for the discovered job. Returns false when the
// discovered row does not exist. A job already approved is not re-approved.
func (s *SQLiteStore) Approve(userID, jobID int64, reason string) (bool, error) {
	var rowID int64
	err := s.db.QueryRow(
		"SELECT id FROM discovered_jobs WHERE user_id = ? AND job_id = ?",
		userID, jobID,
	).Scan(&rowID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up job %d for approval: %w", jobID, err)
	}

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO approved_jobs (user_id, discovered_job_id, reason)
		 VALUES (?, ?, ?)`,
		userID, rowID, reason,
	)
	if err != nil {
		return false, fmt.Errorf("approving job %d: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("approving job %d: %w", jobID, err)
	}
	return n > 0, nil
}

// RecordDetailAttempt bumps the per-job counter of detail-processing
// attempts. Used to cap reprocessing of jobs whose detail fetch keeps failing.
func (s *SQLiteStore) RecordDetailAttempt(userID, jobID int64) error {
	_, err := s.db.Exec(
		"UPDATE discovered_jobs SET detail_attempts = detail_attempts + 1 WHERE user_id = ? AND job_id = ?",
		userID, jobID,
	)
	if err != nil {
		return fmt.Errorf("recording detail attempt for job %d: %w", jobID, err)
	}
	return nil
}

// DetailAttempts returns how many times the job's detail has been processed.
func (s *SQLiteStore) DetailAttempts(userID, jobID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT detail_attempts FROM discovered_jobs WHERE user_id = ? AND job_id = ?",
		userID, jobID,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading detail attempts for job %d: %w", jobID, err)
	}
	return n, nil
}

// CountJobs returns the number of discovered rows for the user.
func (s *SQLiteStore) CountJobs(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM discovered_jobs WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting jobs for user %d: %w", userID, err)
	}
	return count, nil
}

// GetJob returns the discovered row, or nil when it does not exist.
func (s *SQLiteStore) GetJob(userID, jobID int64) (*model.DiscoveredJob, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, job_id, url, location, keyword, title, description, analyzed, discovered
		 FROM discovered_jobs WHERE user_id = ? AND job_id = ?`,
		userID, jobID,
	)
	var j model.DiscoveredJob
	var title, desc sql.NullString
	err := row.Scan(&j.RowID, &j.UserID, &j.JobID, &j.URL, &j.Location, &j.Keyword,
		&title, &desc, &j.Analyzed, &j.Discovered)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading job %d: %w", jobID, err)
	}
	if title.Valid {
		j.Title = &title.String
	}
	if desc.Valid {
		j.Description = &desc.String
	}
	return &j, nil
}

// SaveCriteria stores (or replaces) a user's search criteria as JSON.
func (s *SQLiteStore) SaveCriteria(c model.UserCriteria) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding criteria for user %d: %w", c.UserID, err)
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO user_criteria (user_id, criteria) VALUES (?, ?)",
		c.UserID, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving criteria for user %d: %w", c.UserID, err)
	}
	return nil
}

// GetCriteria loads a user's criteria. Returns nil when none are saved.
func (s *SQLiteStore) GetCriteria(userID int64) (*model.UserCriteria, error) {
	var raw string
	err := s.db.QueryRow(
		"SELECT criteria FROM user_criteria WHERE user_id = ?", userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading criteria for user %d: %w", userID, err)
	}
	var c model.UserCriteria
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decoding criteria for user %d: %w", userID, err)
	}
	c.UserID = userID
	return &c, nil
}

// ListCriteriaUsers returns the IDs of all users with saved criteria.
func (s *SQLiteStore) ListCriteriaUsers() ([]int64, error) {
	rows, err := s.db.Query("SELECT user_id FROM user_criteria ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("listing criteria users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listing criteria users: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
