// Package commands implements the mindiv CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// Persistent flag names.
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"
	flagNoColor  = "no-color"
)

// NewRootCommand builds the mindiv command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mindiv",
		Short: "Smallest numbers with a given number of divisors",
		Long: `mindiv computes Un, the smallest positive integer with exactly n divisors
(OEIS A005179), and writes each result as its prime factorization.

Commands:
  solve     Compute Un for individual values of n
  search    Compute Un over a range with checkpointing
  verify    Cross-check every method against brute force
  export    Convert a result log to CSV, JSON or YAML
  compare   Diff two result logs
  plot      Render a result log as an HTML chart
  mcp       Serve the solvers as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "config file (default: .mindiv.yaml in . or $HOME)")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool(flagLogJSON, false, "log as JSON")
	rootCmd.PersistentFlags().Bool(flagNoColor, false, "disable colored output")

	rootCmd.AddCommand(
		NewSolveCommand(),
		NewSearchCommand(),
		NewVerifyCommand(),
		NewExportCommand(),
		NewCompareCommand(),
		NewPlotCommand(),
		NewMCPCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
