// Package workspace owns the agent's view of the working directory: the
// working-memory file the model must rewrite every step, the Agent.md
// operator notes, the file inventory seeded into context, and the git
// snapshot appended to command results.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daydemir/vibe/internal/executor"
)

const VibeDir = ".vibe"

const (
	inventoryLimit = 200
	previewFiles   = 8
	previewBytes   = 800
)

// previewExtensions are the text formats worth inlining into context
var previewExtensions = []string{
	".md", ".txt", ".py", ".html", ".js", ".css", ".json", ".yml", ".yaml",
}

const defaultAgentNotes = "# Agent\n- Keep changes minimal\n"

// Workspace wraps one working directory for the lifetime of a run
type Workspace struct {
	dir        string
	memoryPath string
	exec       *executor.Executor
}

// New creates a workspace rooted at dir. Helper commands (inventory, git)
// run through the same executor as agent commands, with the same timeout.
func New(dir, memoryFile string, exec *executor.Executor) *Workspace {
	return &Workspace{
		dir:        dir,
		memoryPath: filepath.Join(dir, memoryFile),
		exec:       exec,
	}
}

// Dir returns the workspace root
func (w *Workspace) Dir() string {
	return w.dir
}

// MemoryPath returns the path of the working-memory file
func (w *Workspace) MemoryPath() string {
	return w.memoryPath
}

// SeedMemory writes the initial working-memory file for a goal
func (w *Workspace) SeedMemory(goal string) error {
	content := fmt.Sprintf("# Task Log\n\n## Goal\n- %s\n\n## Checklist\n- [ ] Plan\n", goal)
	return w.UpdateMemory(content)
}

// UpdateMemory fully overwrites the working-memory file and reads it back.
// A failure here is a reportable condition for the model, not a fatal one.
func (w *Workspace) UpdateMemory(content string) error {
	if err := os.WriteFile(w.memoryPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("cannot update memory file: %w", err)
	}
	readBack, err := os.ReadFile(w.memoryPath)
	if err != nil {
		return fmt.Errorf("memory file unreadable after update: %w", err)
	}
	if string(readBack) != content {
		return fmt.Errorf("memory file content mismatch after update")
	}
	return nil
}

// ReadMemory returns the current working-memory text, or "" if absent
func (w *Workspace) ReadMemory() string {
	data, err := os.ReadFile(w.memoryPath)
	if err != nil {
		return ""
	}
	return string(data)
}

// AgentNotes returns the operator's Agent.md, or a minimal default
func (w *Workspace) AgentNotes() string {
	data, err := os.ReadFile(filepath.Join(w.dir, "Agent.md"))
	if err != nil {
		return defaultAgentNotes
	}
	return string(data)
}

// Inventory lists workspace files (up to 200), preferring rg and falling
// back to find. Returns the rendered listing and the raw paths.
func (w *Workspace) Inventory(ctx context.Context) (string, []string) {
	res := w.exec.Execute(ctx, fmt.Sprintf("rg --files -g '!.git' -g '!logs/*' 2>/dev/null | head -n %d", inventoryLimit))
	if res.ExitCode != 0 || strings.TrimSpace(res.Stdout) == "" {
		res = w.exec.Execute(ctx, fmt.Sprintf("find . -type f -not -path './.git/*' -not -path './logs/*' | sed 's#^./##' | head -n %d", inventoryLimit))
	}

	var files []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	if len(files) == 0 {
		return "(no files found)", nil
	}

	var sb strings.Builder
	for _, f := range files {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), files
}

// Previews inlines the first previewFiles previewable text files,
// truncated to previewBytes each.
func (w *Workspace) Previews(files []string) string {
	var picks []string
	for _, f := range files {
		if hasPreviewExtension(f) {
			picks = append(picks, f)
			if len(picks) == previewFiles {
				break
			}
		}
	}
	if len(picks) == 0 {
		return "(no previewable text files)"
	}

	var sb strings.Builder
	for _, p := range picks {
		sb.WriteString("\n### ")
		sb.WriteString(p)
		sb.WriteString("\n")

		data, err := os.ReadFile(filepath.Join(w.dir, p))
		if err != nil {
			sb.WriteString("(unreadable)")
			continue
		}
		text := string(data)
		if len(text) > previewBytes {
			text = text[:previewBytes]
		}
		text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
		if text == "" {
			text = "(empty)"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func hasPreviewExtension(path string) bool {
	for _, ext := range previewExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// GitSnapshot returns the current git status and diff (excluding the
// memory file), or a disabled marker outside a repository.
func (w *Workspace) GitSnapshot(ctx context.Context) string {
	inside := w.exec.Execute(ctx, "git rev-parse --is-inside-work-tree")
	if inside.ExitCode != 0 {
		return "\n[git]\n[disabled: not a git repository]"
	}
	status := w.exec.Execute(ctx, "git status --porcelain")
	diff := w.exec.Execute(ctx, fmt.Sprintf("git diff -- . ':(exclude)%s'", filepath.Base(w.memoryPath)))
	return fmt.Sprintf("\n[git status]\n%s\n[git diff]\n%s", status.Output(), diff.Output())
}
