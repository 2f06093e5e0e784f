package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/bench/report"
)

func NewReportCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Summarize an existing report file",
		Long: `Parse the raw /proc status blocks of a report and render the per-metric
delta summary table.

By default the summary prints to stdout. With --write it is appended to the
report file itself, the way a completed run leaves it.`,
		Example: `  # Print the summary
  wasmbench report report_2026-08-29T10-15-00.md

  # Append the summary to the file
  wasmbench report report_2026-08-29T10-15-00.md --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			rounds, err := report.Parse(path)
			if err != nil {
				return err
			}

			summary := report.Summary(rounds, nil)

			if !write {
				fmt.Print(summary)
				return nil
			}

			writer := report.NewWriter(path)
			if err := writer.WriteSummary(summary); err != nil {
				return err
			}
			ui.PrintSuccess(fmt.Sprintf("summary appended to %s (%d rounds)", path, len(rounds)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Append the summary to the report file")

	return cmd
}
