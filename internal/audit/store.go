package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store indexes runs, steps and interventions in sqlite so past runs can
// be listed without scanning log files. The file trail stays the source
// of truth; the index is best-effort.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the run index at dbPath
func OpenStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		goal TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		log_path TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'running'
	);

	CREATE TABLE IF NOT EXISTS steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		step_num INTEGER NOT NULL,
		phase TEXT NOT NULL,
		command TEXT,
		denied INTEGER NOT NULL DEFAULT 0,
		exit_code INTEGER,
		timed_out INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER,
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, step_num)
	);

	CREATE TABLE IF NOT EXISTS interventions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		kind TEXT NOT NULL,
		detail TEXT,
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id);
	CREATE INDEX IF NOT EXISTS idx_interventions_run ON interventions(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun registers a new run
func (s *Store) CreateRun(runID string, meta RunMeta, logPath string, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, goal, provider, model, log_path) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, startedAt, meta.Goal, meta.Provider, meta.Model, logPath)
	return err
}

// RecordStep indexes one step. Best-effort: errors are swallowed so the
// file trail keeps going.
func (s *Store) RecordStep(runID string, rec StepRecord) {
	var exitCode sql.NullInt64
	var timedOut bool
	var durationMs sql.NullInt64
	if rec.Result != nil {
		exitCode = sql.NullInt64{Int64: int64(rec.Result.ExitCode), Valid: true}
		timedOut = rec.Result.TimedOut
		durationMs = sql.NullInt64{Int64: rec.Result.Duration.Milliseconds(), Valid: true}
	}
	s.db.Exec(
		`INSERT OR IGNORE INTO steps (run_id, step_num, phase, command, denied, exit_code, timed_out, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Step, rec.Phase, rec.Command, rec.Denied, exitCode, timedOut, durationMs)
}

// RecordIntervention indexes one operator intervention. Best-effort.
func (s *Store) RecordIntervention(runID, kind, detail string) {
	s.db.Exec(
		`INSERT INTO interventions (run_id, kind, detail) VALUES (?, ?, ?)`,
		runID, kind, detail)
}

// FinishRun stamps the run's terminal status. Best-effort.
func (s *Store) FinishRun(runID, status string) {
	s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now(), runID)
}

// RunInfo summarizes one indexed run
type RunInfo struct {
	ID        string
	StartedAt time.Time
	Goal      string
	Status    string
	LogPath   string
	Steps     int
}

// RecentRuns lists the most recent runs, newest first
func (s *Store) RecentRuns(limit int) ([]RunInfo, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.started_at, r.goal, r.status, r.log_path,
		        (SELECT COUNT(*) FROM steps st WHERE st.run_id = r.id)
		 FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.StartedAt, &info.Goal, &info.Status, &info.LogPath, &info.Steps); err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}
