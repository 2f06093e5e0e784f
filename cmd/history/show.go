package history

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/bench/procfs"
)

func NewHistoryShowCommand() *cobra.Command {
	var (
		asJSON bool
		copyRn bool
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Long: `Show the rounds and metadata of a recorded run.

The run ID is the timestamp printed by 'wasmbench run' and listed by
'wasmbench history list'.`,
		Example: `  wasmbench history show 2026-08-29T10-15-00

  # Copy the run as JSON to the clipboard
  wasmbench history show 2026-08-29T10-15-00 --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.Get(args[0])
			if err != nil {
				return err
			}

			if copyRn {
				data, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return err
				}
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("failed to copy run to clipboard: %w", err)
				}
				ui.PrintSuccess(fmt.Sprintf("run %s copied to clipboard", run.ID))
				return nil
			}

			if asJSON {
				data, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintInfo("Run", run.ID)
			ui.PrintInfo("Suite", run.Suite)
			ui.PrintInfo("Host", run.Host)
			if run.Revision != "" {
				ui.PrintInfo("Revision", run.Revision)
			}
			ui.PrintInfo("Report", run.ReportPath)
			fmt.Println()

			table := ui.NewTable([]string{"BACKEND", "INSTANCES", "VMRSS (KB)", "THREADS"})
			for _, round := range run.Rounds {
				rss := "-"
				if v, ok := round.Metric(procfs.KeyVmRSS); ok {
					rss = strconv.FormatInt(v, 10)
				}
				threads := "-"
				if v, ok := round.Metric(procfs.KeyThreads); ok {
					threads = strconv.FormatInt(v, 10)
				}
				table.AddRow(round.Backend, strconv.Itoa(round.Instances), rss, threads)
			}

			if globalConfig.Plain {
				fmt.Print(table.RenderPlain())
			} else {
				fmt.Print(table.Render())
			}

			for _, f := range run.Failures {
				ui.PrintWarning(fmt.Sprintf("%s with %d instance(s): %s", f.Backend, f.Instances, f.Reason))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	cmd.Flags().BoolVar(&copyRn, "copy", false, "Copy the run as JSON to the clipboard")

	return cmd
}
