package cmd

import (
	"github.com/spf13/cobra"

	"github.com/proxystack/wasmbench/cmd/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded benchmark runs",
	Long: `Commands for working with the local run history.

Every completed sweep is stored in a local database, keyed by run ID. The
history keeps the parsed rounds alongside the report path, host and source
revision, so past runs can be inspected without the report files.`,
	Example: `  # List recorded runs
  wasmbench history list

  # Inspect one run
  wasmbench history show 2026-08-29T10-15-00

  # Drop everything but the last 10 runs
  wasmbench history prune --keep 10`,
}

func init() {
	historyCmd.AddCommand(history.NewHistoryListCommand())
	historyCmd.AddCommand(history.NewHistoryShowCommand())
	historyCmd.AddCommand(history.NewHistoryPruneCommand())
	rootCmd.AddCommand(historyCmd)
}
