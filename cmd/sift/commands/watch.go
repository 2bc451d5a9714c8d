package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sift/internal/adapters/watcher"
	"go.trai.ch/sift/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [projects...]",
		Short: "Analyze the workspace and re-analyze it on file changes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, _ := cmd.Flags().GetDuration("debounce")
			ui, _ := cmd.Flags().GetString("ui")
			return c.app.Watch(cmd.Context(), app.WatchOptions{
				AnalyzeOptions: analyzeOptions(cmd, args),
				Window:         window,
				UI:             ui,
			})
		},
	}
	addAnalyzeFlags(cmd)
	cmd.Flags().Duration("debounce", watcher.DefaultDebounceWindow, "Quiet period after the last change before re-analyzing")
	cmd.Flags().String("ui", "auto", "Watch display: auto, tui, or plain")
	return cmd
}
