package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daydemir/vibe/internal/workspace"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a vibe workspace",
	Long: `Initialize a vibe workspace in the current directory.

Creates:
  - .vibe/config.yaml   Provider, run and guard settings
  - Agent.md            Standing notes fed to the model every run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir()
		if err != nil {
			return err
		}
		if err := workspace.Init(dir, initForce); err != nil {
			return err
		}
		fmt.Println("Workspace initialized. Edit .vibe/config.yaml, then 'vibe run \"goal\"'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing workspace")
	rootCmd.AddCommand(initCmd)
}
