package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/bench/wasmcheck"
)

func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Preflight the suite's wasm modules",
		Long: `Instantiate every wasm module referenced by the suite's backends.

A module that fails to instantiate here would make the proxy reject its
bootstrap config mid-sweep, wasting a build-and-boot cycle. The check runs
each module in an isolated runtime and reports per-module results without
short-circuiting.`,
		Example: `  wasmbench check
  wasmbench check --suite ./suites/wamr-only.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := loadSuite()
			if err != nil {
				return err
			}

			results := wasmcheck.CheckSuite(cmd.Context(), suite.Suite)
			if len(results) == 0 {
				ui.PrintWarning("no backend declares wasm modules, nothing to check")
				return nil
			}

			table := ui.NewTable([]string{"BACKEND", "MODULE", "SIZE", "STATUS"})
			failed := 0
			for _, r := range results {
				status := "ok"
				size := strconv.FormatInt(r.Size, 10)
				if !r.OK() {
					status = r.Err.Error()
					size = "-"
					failed++
				}
				table.AddRow(r.Backend, r.Module, size, status)
			}

			if globalConfig.Plain {
				fmt.Print(table.RenderPlain())
			} else {
				fmt.Print(table.Render())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d module(s) failed to instantiate", failed, len(results))
			}

			ui.PrintSuccess(fmt.Sprintf("all %d module(s) instantiated", len(results)))
			return nil
		},
	}

	return cmd
}
