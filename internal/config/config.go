package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the vibe configuration
type Config struct {
	Provider Provider `mapstructure:"provider"`
	Run      Run      `mapstructure:"run"`
	Guard    Guard    `mapstructure:"guard"`
}

// Provider contains model provider settings
type Provider struct {
	Name    string `mapstructure:"name"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Run contains run-loop settings
type Run struct {
	MaxSteps       int    `mapstructure:"max_steps"`
	CommandTimeout int    `mapstructure:"command_timeout"` // seconds
	LogsDir        string `mapstructure:"logs_dir"`
	IndexPath      string `mapstructure:"index_path"` // sqlite run index
	MemoryFile     string `mapstructure:"memory_file"`
}

// Guard contains command-filter settings
type Guard struct {
	DenyTokens []string `mapstructure:"deny_tokens"`
}

// Timeout returns the command timeout as a duration
func (r Run) Timeout() time.Duration {
	return time.Duration(r.CommandTimeout) * time.Second
}

// Load reads the config from the workspace, then applies environment
// overrides (PROVIDER, MODEL, BASE_URL, API_KEY, MAX_STEPS, CMD_TIMEOUT).
func Load(workspaceDir string) (*Config, error) {
	configPath := filepath.Join(workspaceDir, ".vibe", "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	bindEnv(v)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Provider.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Provider.APIKey = key
		}
	}

	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("provider.name", "PROVIDER")
	v.BindEnv("provider.model", "MODEL")
	v.BindEnv("provider.base_url", "BASE_URL")
	v.BindEnv("provider.api_key", "API_KEY")
	v.BindEnv("run.max_steps", "MAX_STEPS")
	v.BindEnv("run.command_timeout", "CMD_TIMEOUT")
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Provider: Provider{
			Name:    "openai",
			Model:   "gpt-4.1-mini",
			BaseURL: "https://api.openai.com/v1",
		},
		Run: Run{
			MaxSteps:       30,
			CommandTimeout: 20,
			LogsDir:        "logs",
			IndexPath:      filepath.Join(".vibe", "runs.db"),
			MemoryFile:     "TASK.md",
		},
		Guard: Guard{},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Provider.Name == "" {
		cfg.Provider.Name = defaults.Provider.Name
	}
	if cfg.Provider.Model == "" {
		if cfg.Provider.Name == "qwen" {
			cfg.Provider.Model = "qwen3-max"
		} else {
			cfg.Provider.Model = defaults.Provider.Model
		}
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = defaults.Provider.BaseURL
	}
	if cfg.Run.MaxSteps == 0 {
		cfg.Run.MaxSteps = defaults.Run.MaxSteps
	}
	if cfg.Run.CommandTimeout == 0 {
		cfg.Run.CommandTimeout = defaults.Run.CommandTimeout
	}
	if cfg.Run.LogsDir == "" {
		cfg.Run.LogsDir = defaults.Run.LogsDir
	}
	if cfg.Run.IndexPath == "" {
		cfg.Run.IndexPath = defaults.Run.IndexPath
	}
	if cfg.Run.MemoryFile == "" {
		cfg.Run.MemoryFile = defaults.Run.MemoryFile
	}
}
