package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxystack/wasmbench/internal/ui"
)

func NewHistoryPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Long: `Delete all but the most recent runs from the history.

Without --keep the configured history.keep_last applies.`,
		Example: `  wasmbench history prune
  wasmbench history prune --keep 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if keep < 0 {
				keep = cfg.History.KeepLast
			}

			deleted, err := s.Prune(keep)
			if err != nil {
				return err
			}

			if len(deleted) == 0 {
				ui.PrintInfo("History", fmt.Sprintf("nothing to prune, keeping up to %d run(s)", keep))
				return nil
			}

			for _, id := range deleted {
				ui.PrintInfo("Deleted", id)
			}
			ui.PrintSuccess(fmt.Sprintf("pruned %d run(s), kept %d", len(deleted), keep))
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", -1, "Runs to keep (defaults to history.keep_last)")

	return cmd
}
