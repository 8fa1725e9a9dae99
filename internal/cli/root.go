package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	workDir string
)

// ErrAborted marks a run the operator quit. The binary maps it to its own
// exit code so wrappers can tell an abort from a real failure.
var ErrAborted = errors.New("run aborted by operator")

var rootCmd = &cobra.Command{
	Use:   "vibe",
	Short: "Model-directed run loop with a human in command",
	Long: `Vibe runs a coding agent as a supervised loop: the model proposes one
shell command per step, a denylist vets it, an executor runs it with a
timeout, and the result is fed back. You can pause with Ctrl+C at any
time, and nothing finishes without your confirmation.

Get started:
  vibe init               Initialize a workspace (.vibe/config.yaml)
  vibe run "goal"         Start a supervised run
  vibe logs               List past runs`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "working directory (default: current directory)")
	rootCmd.SetVersionTemplate(fmt.Sprintf("vibe version %s\n", version))
}

// resolveDir returns the workspace directory from the --dir flag or cwd
func resolveDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}
