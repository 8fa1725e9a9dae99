package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrWorkspaceExists = errors.New("vibe workspace already exists (use --force to overwrite)")

const starterConfig = `# vibe configuration
provider:
  name: openai
  model: gpt-4.1-mini
  base_url: https://api.openai.com/v1
  # api_key: set here or via API_KEY / OPENAI_API_KEY

run:
  max_steps: 30
  command_timeout: 20

guard:
  # deny_tokens replaces the built-in denylist when set
  deny_tokens: []
`

// Init seeds .vibe/config.yaml and a starter Agent.md in dir
func Init(dir string, force bool) error {
	vibePath := filepath.Join(dir, VibeDir)

	if _, err := os.Stat(vibePath); err == nil && !force {
		return ErrWorkspaceExists
	}
	if err := os.MkdirAll(vibePath, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", vibePath, err)
	}

	configPath := filepath.Join(vibePath, "config.yaml")
	if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	agentPath := filepath.Join(dir, "Agent.md")
	if _, err := os.Stat(agentPath); os.IsNotExist(err) {
		if err := os.WriteFile(agentPath, []byte(defaultAgentNotes), 0644); err != nil {
			return fmt.Errorf("failed to write Agent.md: %w", err)
		}
	}

	return nil
}
