package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/daydemir/vibe/internal/audit"
	"github.com/daydemir/vibe/internal/config"
	"github.com/daydemir/vibe/internal/display"
)

var logsLast int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List past runs",
	Long: `List past runs from the workspace run index.

Each run also has a full append-only log file under logs/; the listing
shows where to find it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir()
		if err != nil {
			return err
		}

		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}

		store, err := audit.OpenStore(filepath.Join(dir, cfg.Run.IndexPath))
		if err != nil {
			return fmt.Errorf("cannot open run index: %w", err)
		}
		defer store.Close()

		runs, err := store.RecentRuns(logsLast)
		if err != nil {
			return fmt.Errorf("cannot list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Start one with 'vibe run \"goal\"'.")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		dim := color.New(color.FgHiBlack).SprintFunc()

		for _, r := range runs {
			fmt.Printf("%s  %s  %-7s  %3d steps  %s\n",
				r.StartedAt.Format("2006-01-02 15:04"),
				cyan(r.ID),
				statusColor(r.Status),
				r.Steps,
				display.Truncate(r.Goal, 60))
			fmt.Printf("                  %s\n", dim(r.LogPath))
		}
		return nil
	},
}

func statusColor(status string) string {
	switch status {
	case "done":
		return color.New(color.FgGreen).Sprint(status)
	case "aborted":
		return color.New(color.FgYellow).Sprint(status)
	case "running":
		return color.New(color.FgCyan).Sprint(status)
	default:
		return color.New(color.FgRed).Sprint(status)
	}
}

func init() {
	logsCmd.Flags().IntVarP(&logsLast, "last", "n", 10, "number of runs to show")
	rootCmd.AddCommand(logsCmd)
}
