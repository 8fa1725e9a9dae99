// Package executor runs exactly one vetted shell command at a time as a
// child process with a wall-clock timeout. The child gets its own process
// group so a timeout kills the whole tree, not just the direct child.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"
)

const (
	// ExitTimeout is the exit code recorded when a command is killed at
	// the timeout boundary.
	ExitTimeout = 124
	// ExitDenied is the exit code recorded for a denylist-blocked command
	// that never spawned.
	ExitDenied = 126

	// maxOutputTail caps the combined output fed back per command.
	maxOutputTail = 6000

	// killGrace is the window between SIGTERM and SIGKILL on timeout.
	killGrace = 2 * time.Second
)

// Config holds executor configuration
type Config struct {
	Shell   string
	Timeout time.Duration
	WorkDir string
}

// DefaultConfig returns default executor configuration
func DefaultConfig(workDir string) *Config {
	return &Config{
		Shell:   "/bin/sh",
		Timeout: 20 * time.Second,
		WorkDir: workDir,
	}
}

// Executor runs one command at a time. It has no internal concurrency;
// the one-command-per-step protocol makes serialization the invariant.
type Executor struct {
	config *Config
}

// New creates a new executor
func New(config *Config) *Executor {
	if config.Shell == "" {
		config.Shell = "/bin/sh"
	}
	return &Executor{config: config}
}

// Timeout returns the configured per-command timeout
func (e *Executor) Timeout() time.Duration {
	return e.config.Timeout
}

// Execute runs a single command and waits for completion or timeout.
// Non-zero exit codes are data, not errors: the result always comes back
// with whatever output was captured.
func (e *Executor) Execute(ctx context.Context, command string) *Result {
	return e.ExecuteWithTimeout(ctx, command, e.config.Timeout)
}

// ExecuteWithTimeout runs a single command with an explicit timeout
func (e *Executor) ExecuteWithTimeout(ctx context.Context, command string, timeout time.Duration) *Result {
	start := time.Now()
	result := &Result{Command: command}

	cmd := exec.Command(e.config.Shell, "-c", command)
	cmd.Dir = e.config.WorkDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		result.ExitCode = 127
		result.Stderr = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		result.ExitCode = exitCode(err)
	case <-timer.C:
		e.killGroup(cmd, done)
		result.TimedOut = true
		result.ExitCode = ExitTimeout
	case <-ctx.Done():
		// Cancellation kills the group the same way a timeout does, and
		// the result must be consistent with that.
		e.killGroup(cmd, done)
		result.TimedOut = true
		result.ExitCode = ExitTimeout
	}

	result.Stdout = tail(stdout.String(), maxOutputTail)
	result.Stderr = tail(stderr.String(), maxOutputTail)
	result.Duration = time.Since(start)
	return result
}

// killGroup escalates: SIGTERM to the process group, short grace period,
// then SIGKILL. Waits for the reaper goroutine so no zombie is left.
func (e *Executor) killGroup(cmd *exec.Cmd, done chan error) {
	pgid := cmd.Process.Pid
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	grace := time.NewTimer(killGrace)
	defer grace.Stop()

	select {
	case <-done:
		return
	case <-grace.C:
	}

	_ = syscall.Kill(-pgid, syscall.SIGKILL)
	<-done
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 127
}

// tail keeps the last n bytes of s, mirroring the output cap the model
// context expects.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
