// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-search",
	Short: "A CLI tool to find popular GitHub repositories by code search.",
	Long: `github-search runs GitHub code searches for one or more keywords, keeps
the matches whose repository has more stars than a threshold, and writes
the links to a date-stamped HTML report.`,
	SilenceUsage: true,
}

// Execute runs the command line and exits with status 1 when the selected
// subcommand fails. Cobra has already printed the error by then.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Shared by every subcommand: debug logging and an optional config file.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML, TOML or JSON config file")
}
