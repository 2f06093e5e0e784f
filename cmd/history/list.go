package history

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/ui"
)

func NewHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		Long:  `List recorded benchmark runs, newest first.`,
		Example: `  wasmbench history list
  wasmbench history list --plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.List()
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				ui.PrintInfo("History", "no recorded runs")
				return nil
			}

			table := ui.NewTable([]string{"RUN", "SUITE", "ROUNDS", "FAILURES"})
			for _, run := range runs {
				table.AddRow(run.ID, run.Suite,
					strconv.Itoa(run.Rounds), strconv.Itoa(run.Failures))
			}

			if globalConfig.Plain {
				fmt.Print(table.RenderPlain())
			} else {
				fmt.Print(table.Render())
			}
			return nil
		},
	}

	return cmd
}
