package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "quillcheck",
	Short: "Quillcheck - concurrent text checker",
	Long: `Quillcheck routes blocks of text through a pool of rule matchers and
aggregates their violations into a single report.

Rules are grouped into categories (grammar, style, ...); checks can cover
all categories or a chosen subset. Matchers run concurrently under a
bounded queue with per-job timeouts.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
