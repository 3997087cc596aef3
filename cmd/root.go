// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "readme-stats",
	Short: "A CLI tool to render GitHub profile statistics into a README.",
	Long: `readme-stats collects the repositories of the authenticated GitHub user,
totals their stars and the user's commits over the past year, and renders
the results into a Mustache template (typically a profile README).`,
	SilenceUsage: true,
	// Failures are already reported through zerolog by the subcommands.
	SilenceErrors: true,
}

// Execute runs the command selected on the command line and exits with
// status 1 when it fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// --verbose lowers the log level from warn to debug for every subcommand.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
