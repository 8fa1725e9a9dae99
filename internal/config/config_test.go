package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Run.MaxSteps != 30 {
		t.Errorf("max steps = %d, want 30", cfg.Run.MaxSteps)
	}
	if cfg.Run.Timeout() != 20*time.Second {
		t.Errorf("timeout = %v, want 20s", cfg.Run.Timeout())
	}
	if cfg.Run.MemoryFile != "TASK.md" {
		t.Errorf("memory file = %q, want TASK.md", cfg.Run.MemoryFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".vibe"), 0755); err != nil {
		t.Fatal(err)
	}
	yaml := `provider:
  name: qwen
run:
  max_steps: 5
  command_timeout: 3
guard:
  deny_tokens:
    - "rm -rf"
    - "git push --force"
`
	if err := os.WriteFile(filepath.Join(dir, ".vibe", "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != "qwen" {
		t.Errorf("provider = %q, want qwen", cfg.Provider.Name)
	}
	if cfg.Provider.Model != "qwen3-max" {
		t.Errorf("qwen default model = %q, want qwen3-max", cfg.Provider.Model)
	}
	if cfg.Run.MaxSteps != 5 {
		t.Errorf("max steps = %d, want 5", cfg.Run.MaxSteps)
	}
	if len(cfg.Guard.DenyTokens) != 2 {
		t.Errorf("deny tokens = %v, want 2 entries", cfg.Guard.DenyTokens)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MAX_STEPS", "7")
	t.Setenv("CMD_TIMEOUT", "2")
	t.Setenv("MODEL", "gpt-4.1")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Run.MaxSteps != 7 {
		t.Errorf("max steps = %d, want 7", cfg.Run.MaxSteps)
	}
	if cfg.Run.Timeout() != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.Run.Timeout())
	}
	if cfg.Provider.Model != "gpt-4.1" {
		t.Errorf("model = %q, want gpt-4.1", cfg.Provider.Model)
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.APIKey != "sk-fallback" {
		t.Errorf("api key = %q, want OPENAI_API_KEY fallback", cfg.Provider.APIKey)
	}
}
