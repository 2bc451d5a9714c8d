package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sift/internal/app"
)

func (c *CLI) newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [projects...]",
		Short: "Analyze the workspace projects and report per-file results",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Analyze(cmd.Context(), analyzeOptions(cmd, args))
		},
	}
	addAnalyzeFlags(cmd)
	cmd.Flags().Bool("strict", false, "Exit non-zero when any document failed")
	return cmd
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("no-cache", "n", false, "Ignore stored results and re-execute every task")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().BoolP("verbose", "v", false, "Print task progress and debug logs")
	cmd.Flags().String("color", "auto", "Color output: auto, always, or never")
}

func analyzeOptions(cmd *cobra.Command, args []string) app.AnalyzeOptions {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	jsonOut, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	color, _ := cmd.Flags().GetString("color")
	// watch defines no --strict flag and reads it as false.
	strict, _ := cmd.Flags().GetBool("strict")

	return app.AnalyzeOptions{
		Projects: args,
		NoCache:  noCache,
		JSON:     jsonOut,
		Verbose:  verbose,
		Strict:   strict,
		Color:    color,
	}
}
