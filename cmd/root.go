// Package cmd defines and implements the CLI commands for the pagesift
// executable.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagesift",
		Short: "Concurrent web page collector producing tabular text datasets",
		Long: `pagesift fetches an explicit list of URLs concurrently, screens out
unreachable pages and soft-404s, extracts headings and paragraphs from each
page, and aggregates everything into a single CSV file.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose output for debugging and request inspection")

	cmd.AddCommand(newCollectCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
