package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daydemir/vibe/internal/audit"
	"github.com/daydemir/vibe/internal/config"
	"github.com/daydemir/vibe/internal/console"
	"github.com/daydemir/vibe/internal/display"
	"github.com/daydemir/vibe/internal/executor"
	"github.com/daydemir/vibe/internal/guard"
	"github.com/daydemir/vibe/internal/interrupt"
	"github.com/daydemir/vibe/internal/llm"
	"github.com/daydemir/vibe/internal/loop"
	"github.com/daydemir/vibe/internal/workspace"
)

var (
	runProvider string
	runModel    string
	runMaxSteps int
	runTimeout  int
	runNoColor  bool
)

var runCmd = &cobra.Command{
	Use:   "run [goal...]",
	Short: "Start a supervised agent run",
	Long: `Start a model-directed run toward a goal.

  vibe run "add a /health endpoint and a test for it"

The model plans first, then alternates act and verify steps, one shell
command at a time. Every command passes the denylist and runs under a
timeout in its own process group. Press Ctrl+C to pause; the run only
finishes when you confirm 'done' at the completion gate.

Provider settings come from .vibe/config.yaml and the PROVIDER / MODEL /
BASE_URL / API_KEY environment variables.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := strings.TrimSpace(strings.Join(args, " "))
		if goal == "" {
			goal = promptGoal()
		}
		if goal == "" {
			return fmt.Errorf("goal must not be empty")
		}

		dir, err := resolveDir()
		if err != nil {
			return err
		}

		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		if runProvider != "" {
			cfg.Provider.Name = runProvider
		}
		if runModel != "" {
			cfg.Provider.Model = runModel
		}
		if runMaxSteps > 0 {
			cfg.Run.MaxSteps = runMaxSteps
		}
		if runTimeout > 0 {
			cfg.Run.CommandTimeout = runTimeout
		}

		disp := display.NewWithOptions(runNoColor)
		g := guard.New(cfg.Guard.DenyTokens)

		execCfg := executor.DefaultConfig(dir)
		execCfg.Timeout = cfg.Run.Timeout()
		exec := executor.New(execCfg)

		ws := workspace.New(dir, cfg.Run.MemoryFile, exec)

		// A broken index never blocks a run; the log file is the record.
		store, err := audit.OpenStore(filepath.Join(dir, cfg.Run.IndexPath))
		if err != nil {
			disp.Warning(fmt.Sprintf("run index unavailable: %v", err))
			store = nil
		}

		log, err := audit.Open(filepath.Join(dir, cfg.Run.LogsDir), store, audit.RunMeta{
			Goal:     goal,
			Provider: cfg.Provider.Name,
			Model:    cfg.Provider.Model,
		})
		if err != nil {
			return err
		}

		client := llm.NewClient(llm.Config{
			Provider: cfg.Provider.Name,
			Model:    cfg.Provider.Model,
			BaseURL:  cfg.Provider.BaseURL,
			APIKey:   cfg.Provider.APIKey,
		})

		intr := interrupt.New()
		defer intr.Stop()

		l := loop.New(loop.Options{
			Config:     cfg,
			Backend:    client,
			Guard:      g,
			Executor:   exec,
			Workspace:  ws,
			Console:    console.New(os.Stdin, disp, g, exec, ws, log),
			Audit:      log,
			Interrupts: intr,
			Display:    disp,
		})

		outcome, runErr := l.Run(cmd.Context(), goal)

		status := string(outcome)
		if runErr != nil {
			status = "fatal"
		}
		if closeErr := log.Close(status); closeErr != nil && runErr == nil {
			runErr = closeErr
		}
		if store != nil {
			store.Close()
		}

		if runErr != nil {
			return runErr
		}
		if outcome == loop.OutcomeAborted {
			return ErrAborted
		}
		return nil
	},
}

// promptGoal asks for the goal interactively when none was given as args
func promptGoal() string {
	fmt.Print("goal> ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func init() {
	runCmd.Flags().StringVar(&runProvider, "provider", "", "model provider (openai, qwen, or any OpenAI-compatible name)")
	runCmd.Flags().StringVar(&runModel, "model", "", "model to use (overrides config)")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", 0, "step budget before the run pauses for review")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "per-command timeout in seconds")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(runCmd)
}
