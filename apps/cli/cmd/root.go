package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bspec",
	Short: "Behavior specs for Go. Describe, run, rerun.",
	Long: `bspec runs behavior-style spec suites: nested groups of examples
with scoped hooks, executed under configurable concurrency, seeded
shuffling, timeouts and fast-fail, with pluggable output formatters and
a rerun-only-failures workflow.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
