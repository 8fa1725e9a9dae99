package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func newTestExecutor(t *testing.T, timeout time.Duration) *Executor {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.Timeout = timeout
	return New(cfg)
}

func TestExecuteSuccess(t *testing.T) {
	e := newTestExecutor(t, 5*time.Second)

	res := e.Execute(context.Background(), "echo hello")
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", res.ExitCode, res.Stderr)
	}
	if res.TimedOut {
		t.Error("TimedOut = true for fast command")
	}
	if !res.Success() {
		t.Error("Success() = false, want true")
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("stdout = %q, want \"hello\"", res.Stdout)
	}
}

func TestExecuteNonZeroExitIsData(t *testing.T) {
	e := newTestExecutor(t, 5*time.Second)

	res := e.Execute(context.Background(), "echo oops >&2; exit 3")
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if res.TimedOut {
		t.Error("TimedOut = true, want false")
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("stderr = %q, want to contain \"oops\"", res.Stderr)
	}
}

func TestExecuteTimeout(t *testing.T) {
	timeout := 300 * time.Millisecond
	e := newTestExecutor(t, timeout)

	start := time.Now()
	res := e.Execute(context.Background(), "echo partial; sleep 30")
	elapsed := time.Since(start)

	if !res.TimedOut {
		t.Fatal("TimedOut = false, want true")
	}
	if res.ExitCode != ExitTimeout {
		t.Errorf("exit code = %d, want %d", res.ExitCode, ExitTimeout)
	}
	if !strings.Contains(res.Stdout, "partial") {
		t.Errorf("partial output lost: stdout = %q", res.Stdout)
	}
	// Duration should sit near the timeout plus at most the kill grace.
	if res.Duration < timeout {
		t.Errorf("duration %v shorter than timeout %v", res.Duration, timeout)
	}
	if elapsed > timeout+killGrace+2*time.Second {
		t.Errorf("execute took %v, escalation too slow", elapsed)
	}
}

func TestExecuteTimeoutKillsProcessGroup(t *testing.T) {
	e := newTestExecutor(t, 300*time.Millisecond)

	// The shell spawns a grandchild that outlives the shell unless the
	// whole process group is killed at the timeout boundary.
	pidFile := filepath.Join(t.TempDir(), "grandchild.pid")
	cmd := fmt.Sprintf("sleep 30 & echo $! > %s; wait", pidFile)

	res := e.Execute(context.Background(), cmd)
	if !res.TimedOut {
		t.Fatal("TimedOut = false, want true")
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Skipf("grandchild pid not recorded: %v", err)
	}
	var pid int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d", &pid); err != nil {
		t.Fatalf("bad pid file contents %q", data)
	}

	// Give the kill a moment to land, then probe with signal 0.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if syscall.Kill(pid, 0) != nil {
			return // gone
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("descendant pid %d still alive after timeout kill", pid)
}

func TestExecuteContextCancellation(t *testing.T) {
	e := newTestExecutor(t, 30*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res := e.Execute(ctx, "sleep 30")
	if !res.TimedOut {
		t.Error("TimedOut = false on context cancellation, want true")
	}
	if res.ExitCode != ExitTimeout {
		t.Errorf("exit code = %d, want %d", res.ExitCode, ExitTimeout)
	}
	if res.Duration > 10*time.Second {
		t.Errorf("duration %v, cancellation not honored", res.Duration)
	}
}

func TestExecuteStartFailure(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Shell = "/nonexistent/shell"
	e := New(cfg)

	res := e.Execute(context.Background(), "echo hi")
	if res.ExitCode != 127 {
		t.Errorf("exit code = %d, want 127", res.ExitCode)
	}
	if res.Stderr == "" {
		t.Error("expected start error in stderr")
	}
}

func TestResultOutput(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{name: "stdout only", result: Result{Stdout: "out"}, want: "out"},
		{name: "stderr only", result: Result{Stderr: "err"}, want: "err"},
		{name: "both", result: Result{Stdout: "out", Stderr: "err"}, want: "out\nerr"},
		{name: "timeout with nothing captured", result: Result{TimedOut: true}, want: "[command timeout]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Output(); got != tt.want {
				t.Errorf("Output() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("x", maxOutputTail+100) + "END"
	got := tail(long, maxOutputTail)
	if len(got) != maxOutputTail {
		t.Errorf("tail length = %d, want %d", len(got), maxOutputTail)
	}
	if !strings.HasSuffix(got, "END") {
		t.Error("tail dropped the end of the output")
	}
}
