package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/bspec/packages/core/config"
	"github.com/abdul-hamid-achik/bspec/packages/history"
)

var (
	historyLimitFlag int
	historyPathFlag  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPathFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(ExitConfigError)
		}
		defer store.Close()

		runs, err := store.Recent(historyLimitFlag)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %-20s  %8s  %8s  %10s\n",
			"RUN", "STARTED", "SEED", "EXAMPLES", "FAILURES", "DURATION")
		for _, run := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %-20d  %8d  %8d  %10s\n",
				run.ID,
				run.StartedAt.Local().Format(time.DateTime),
				run.Seed,
				run.Examples,
				run.Failures,
				run.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyPathFlag, "history", config.EnvString("BSPEC_HISTORY", history.DefaultPath), "Run history database path (env: BSPEC_HISTORY)")
}
