// Package audit writes the durable record of a run: one append-only log
// file per run plus a sqlite index used to list past runs. Records are
// written once and never rewritten, so a crash mid-run leaves a valid
// prefix.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/daydemir/vibe/internal/executor"
)

// FatalIOError reports an unwritable audit trail. It is the only failure
// allowed to terminate the run outside an explicit operator decision,
// since audit integrity cannot be guaranteed past it.
type FatalIOError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *FatalIOError) Error() string {
	return fmt.Sprintf("audit log unwritable (%s): %v", e.Path, e.Err)
}

// Unwrap returns the underlying IO error
func (e *FatalIOError) Unwrap() error {
	return e.Err
}

// RunMeta describes the run being recorded
type RunMeta struct {
	Goal     string
	Provider string
	Model    string
}

// Log is the append-only audit trail for one run
type Log struct {
	runID string
	path  string
	file  *os.File
	store *Store // nil disables the index
}

// Open creates the per-run log file under logsDir and registers the run
// in the index. The file name carries the start timestamp; the run ID
// adds a uuid suffix for cross-referencing.
func Open(logsDir string, store *Store, meta RunMeta) (*Log, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, &FatalIOError{Path: logsDir, Err: err}
	}

	now := time.Now()
	runID := fmt.Sprintf("run-%s-%s", now.Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(logsDir, fmt.Sprintf("run_%s.log", now.Format("20060102_150405")))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, &FatalIOError{Path: path, Err: err}
	}

	l := &Log{runID: runID, path: path, file: file, store: store}

	header := fmt.Sprintf("# Vibe Runner Log\nrun_id=%s\nstarted_at=%s\nprovider=%s\nmodel=%s\ngoal=%s\n\n",
		runID, now.Format(time.RFC3339), meta.Provider, meta.Model, meta.Goal)
	if err := l.append(header); err != nil {
		file.Close()
		return nil, err
	}

	if store != nil {
		if err := store.CreateRun(runID, meta, path, now); err != nil {
			// Index trouble must not lose the file trail.
			l.store = nil
		}
	}
	return l, nil
}

// RunID returns the run identifier
func (l *Log) RunID() string {
	return l.runID
}

// Path returns the log file path
func (l *Log) Path() string {
	return l.path
}

// StepRecord captures one step for the audit trail
type StepRecord struct {
	Step     int
	Phase    string
	Decision string
	Command  string
	Denied   bool
	Result   *executor.Result
	Raw      string // model response JSON
}

// Step appends one step record
func (l *Log) Step(rec StepRecord) error {
	entry := fmt.Sprintf("\n## step %d\nresponse=%s\nphase=%s\n", rec.Step, rec.Raw, rec.Phase)
	if rec.Command != "" {
		entry += fmt.Sprintf("cmd=%s\n", rec.Command)
	}
	switch {
	case rec.Denied:
		entry += "guard=denied\n"
	case rec.Result != nil:
		entry += fmt.Sprintf("exit_code=%d\ntimed_out=%v\nduration=%s\noutput:\n%s\n",
			rec.Result.ExitCode, rec.Result.TimedOut, rec.Result.Duration.Round(time.Millisecond), rec.Result.Output())
	}
	if err := l.append(entry); err != nil {
		return err
	}

	if l.store != nil {
		l.store.RecordStep(l.runID, rec)
	}
	return nil
}

// Intervention appends one operator-intervention record (feedback, manual
// command, pause, resume, quit, done).
func (l *Log) Intervention(kind, detail string) error {
	entry := kind
	if detail != "" {
		entry += "=" + detail
	}
	if err := l.append(entry + "\n"); err != nil {
		return err
	}

	if l.store != nil {
		l.store.RecordIntervention(l.runID, kind, detail)
	}
	return nil
}

// Note appends a free-form status line (warnings, errors, state changes)
func (l *Log) Note(line string) error {
	return l.append(line + "\n")
}

// Close finalizes the trail with the run's outcome
func (l *Log) Close(status string) error {
	appendErr := l.append(fmt.Sprintf("\nstatus=%s\n", status))
	if l.store != nil {
		l.store.FinishRun(l.runID, status)
	}
	if err := l.file.Close(); err != nil && appendErr == nil {
		return &FatalIOError{Path: l.path, Err: err}
	}
	return appendErr
}

// append writes and syncs one record. Sync per record keeps the
// valid-prefix guarantee across crashes.
func (l *Log) append(s string) error {
	if _, err := l.file.WriteString(s); err != nil {
		return &FatalIOError{Path: l.path, Err: err}
	}
	if err := l.file.Sync(); err != nil {
		return &FatalIOError{Path: l.path, Err: err}
	}
	return nil
}
