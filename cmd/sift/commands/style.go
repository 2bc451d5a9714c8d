package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/sift/internal/app"
)

func (c *CLI) newStyleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style <file>",
		Short: "Print the styling categories of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			color, _ := cmd.Flags().GetString("color")
			return c.app.Style(cmd.Context(), args[0], app.StyleOptions{JSON: jsonOut, Color: color})
		},
	}
	cmd.Flags().Bool("json", false, "Print the spans as JSON")
	cmd.Flags().String("color", "auto", "Color output: auto, always, or never")
	return cmd
}
