// Package storage provides SQLite-based persistence for driver runs and the
// one-second stats reports applications emit while running.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Run end reasons.
const (
	EndClosed = "closed" // Application asked to close
	EndError  = "error"  // Platform or activation failure
	EndAbort  = "abort"  // Process or session torn down from outside
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one driver lifetime, from activation to termination.
type Run struct {
	ID         int64
	AppID      string
	Platform   string // "tui", "ssh" or "desktop"
	UpdateRate int
	StartedAt  time.Time
	EndedAt    time.Time // Zero while running or after a crash
	EndReason  string
	Reports    int     // Number of one-second reports
	AvgUPS     float64 // Mean updates per second over all reports
	AvgFPS     float64 // Mean renders per second over all reports
}

// Sample is a single one-second report.
type Sample struct {
	Seq        int // 1-based report number within the run
	UPS        int
	FPS        int
	RecordedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			app_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			update_rate INTEGER NOT NULL,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			end_reason TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_app_id ON runs(app_id);

		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			ups INTEGER NOT NULL,
			fps INTEGER NOT NULL,
			recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records the activation of a driver and returns the run ID.
func (s *Store) StartRun(appID, platform string, updateRate int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO runs (app_id, platform, update_rate) VALUES (?, ?, ?)",
		appID, platform, updateRate,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot start run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// EndRun marks a run as finished with the given reason.
func (s *Store) EndRun(runID int64, reason string) error {
	res, err := s.db.Exec(
		"UPDATE runs SET ended_at = CURRENT_TIMESTAMP, end_reason = ? WHERE id = ? AND ended_at IS NULL",
		reason, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot end run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot end run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: run %d not found or already ended", runID)
	}
	return nil
}

// RecordSample appends a one-second report to a run.
func (s *Store) RecordSample(runID int64, ups, fps int) error {
	_, err := s.db.Exec(
		`INSERT INTO samples (run_id, seq, ups, fps)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM samples WHERE run_id = ?), ?, ?)`,
		runID, runID, ups, fps,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record sample: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
// An empty appID returns runs of every application.
func (s *Store) RecentRuns(appID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.app_id, r.platform, r.update_rate, r.started_at, r.ended_at,
		        COALESCE(r.end_reason, ''),
		        COUNT(sm.id), COALESCE(AVG(sm.ups), 0), COALESCE(AVG(sm.fps), 0)
		 FROM runs r
		 LEFT JOIN samples sm ON sm.run_id = r.id
		 WHERE ? = '' OR r.app_id = ?
		 GROUP BY r.id
		 ORDER BY r.id DESC
		 LIMIT ?`,
		appID, appID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, endedAt any
		if err := rows.Scan(&r.ID, &r.AppID, &r.Platform, &r.UpdateRate, &startedAt, &endedAt,
			&r.EndReason, &r.Reports, &r.AvgUPS, &r.AvgFPS); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.StartedAt = parseTime(startedAt)
		r.EndedAt = parseTime(endedAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Samples returns the reports of a run in order.
func (s *Store) Samples(runID int64) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT seq, ups, fps, recorded_at
		 FROM samples
		 WHERE run_id = ?
		 ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sm Sample
		var recordedAt any
		if err := rows.Scan(&sm.Seq, &sm.UPS, &sm.FPS, &recordedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sm.RecordedAt = parseTime(recordedAt)
		samples = append(samples, sm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return samples, nil
}

// ClearRuns deletes all runs and samples of the given application.
func (s *Store) ClearRuns(appID string) error {
	_, err := s.db.Exec("DELETE FROM samples WHERE run_id IN (SELECT id FROM runs WHERE app_id = ?)", appID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear samples: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs WHERE app_id = ?", appID); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// Recorder returns a sink that appends reports to runID.
func (s *Store) Recorder(runID int64) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// Recorder binds a Store to a single run.
type Recorder struct {
	store *Store
	runID int64
}

// RecordStats appends one report to the bound run.
func (r *Recorder) RecordStats(ups, fps int) error {
	if r == nil || r.store == nil {
		return errors.New("storage: recorder has no store")
	}
	return r.store.RecordSample(r.runID, ups, fps)
}

// RunID returns the bound run.
func (r *Recorder) RunID() int64 {
	return r.runID
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
