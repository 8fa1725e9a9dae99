package executor

import "time"

// Result holds the outcome of a single command execution. Immutable once
// produced; appended to the run context and the audit log.
type Result struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

// Success reports whether the command exited cleanly
func (r *Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Output returns combined stdout and stderr
func (r *Result) Output() string {
	if r.TimedOut && r.Stdout == "" && r.Stderr == "" {
		return "[command timeout]"
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}
