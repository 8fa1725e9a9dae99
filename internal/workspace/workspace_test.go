package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/daydemir/vibe/internal/executor"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	dir := t.TempDir()
	cfg := executor.DefaultConfig(dir)
	cfg.Timeout = 5 * time.Second
	return New(dir, "TASK.md", executor.New(cfg))
}

func TestSeedAndUpdateMemory(t *testing.T) {
	w := newTestWorkspace(t)

	if err := w.SeedMemory("build a todo app"); err != nil {
		t.Fatalf("SeedMemory() error = %v", err)
	}
	seeded := w.ReadMemory()
	if !strings.Contains(seeded, "build a todo app") {
		t.Errorf("seeded memory missing goal: %q", seeded)
	}
	if !strings.Contains(seeded, "- [ ] Plan") {
		t.Errorf("seeded memory missing checklist: %q", seeded)
	}

	if err := w.UpdateMemory("# Task Log\n\nreplaced\n"); err != nil {
		t.Fatalf("UpdateMemory() error = %v", err)
	}
	if got := w.ReadMemory(); got != "# Task Log\n\nreplaced\n" {
		t.Errorf("memory not fully overwritten: %q", got)
	}
}

func TestUpdateMemoryUnwritable(t *testing.T) {
	dir := t.TempDir()
	cfg := executor.DefaultConfig(dir)
	w := New(filepath.Join(dir, "missing-subdir"), "TASK.md", executor.New(cfg))

	if err := w.UpdateMemory("content"); err == nil {
		t.Error("expected error for unwritable memory path")
	}
}

func TestAgentNotes(t *testing.T) {
	w := newTestWorkspace(t)

	if got := w.AgentNotes(); !strings.Contains(got, "Keep changes minimal") {
		t.Errorf("default notes = %q", got)
	}

	custom := "# Agent\n- Use make targets only\n"
	if err := os.WriteFile(filepath.Join(w.Dir(), "Agent.md"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}
	if got := w.AgentNotes(); got != custom {
		t.Errorf("AgentNotes() = %q, want file contents", got)
	}
}

func TestInventoryAndPreviews(t *testing.T) {
	w := newTestWorkspace(t)

	files := map[string]string{
		"readme.md":  "# Readme\nhello",
		"main.py":    "print('hi')",
		"data.bin":   string([]byte{0, 1, 2}),
		"notes.yaml": "key: value",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(w.Dir(), name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	listing, paths := w.Inventory(context.Background())
	if len(paths) != len(files) {
		t.Fatalf("inventory returned %d files, want %d: %v", len(paths), len(files), paths)
	}
	if !strings.Contains(listing, "- readme.md") {
		t.Errorf("listing missing readme.md: %q", listing)
	}

	previews := w.Previews(paths)
	if !strings.Contains(previews, "### readme.md") {
		t.Errorf("previews missing readme.md section: %q", previews)
	}
	if strings.Contains(previews, "data.bin") {
		t.Errorf("binary file should not be previewed: %q", previews)
	}
}

func TestInventoryEmpty(t *testing.T) {
	w := newTestWorkspace(t)

	listing, paths := w.Inventory(context.Background())
	if paths != nil {
		t.Errorf("paths = %v, want nil", paths)
	}
	if listing != "(no files found)" {
		t.Errorf("listing = %q", listing)
	}
}

func TestGitSnapshotOutsideRepo(t *testing.T) {
	w := newTestWorkspace(t)

	snap := w.GitSnapshot(context.Background())
	if !strings.Contains(snap, "[disabled: not a git repository]") {
		t.Errorf("snapshot = %q, want disabled marker", snap)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	if err := Init(dir, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, VibeDir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Agent.md")); err != nil {
		t.Errorf("Agent.md not created: %v", err)
	}

	if err := Init(dir, false); err != ErrWorkspaceExists {
		t.Errorf("second Init() error = %v, want ErrWorkspaceExists", err)
	}
	if err := Init(dir, true); err != nil {
		t.Errorf("forced Init() error = %v", err)
	}
}
