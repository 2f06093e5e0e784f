package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/builders"
	"github.com/proxystack/wasmbench/pkg/manifest"
	"github.com/proxystack/wasmbench/pkg/types"
)

func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the sweep a run would execute",
		Long: `Print the benchmark matrix for the current suite manifest.

For every backend the plan shows whether its proxy binary is installed, the
build flag it was produced with, and the instance counts it will be swept
through. Nothing is executed.`,
		Example: `  wasmbench plan
  wasmbench plan --suite ./suites/wamr-only.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := loadSuite()
			if err != nil {
				return err
			}

			counts := make([]string, len(suite.Suite.InstanceCounts))
			for i, n := range suite.Suite.InstanceCounts {
				counts[i] = strconv.Itoa(n)
			}

			table := ui.NewTable([]string{"BACKEND", "FLAVOR", "BINARY", "INSTALLED", "REVISION"})
			rounds := 0
			missing := 0
			for _, backend := range suite.Suite.Backends {
				info := backendInfo(backend)
				installed := "no"
				if info.Installed {
					installed = "yes"
				} else {
					missing++
				}
				revision := info.Revision
				if revision == "" {
					revision = "-"
				}
				table.AddRow(info.Name, backend.Flavor, info.BinaryPath, installed, revision)
				rounds += len(suite.Suite.InstanceCounts)
			}

			ui.PrintInfo("Suite", suite.Suite.Name)
			ui.PrintInfo("Instance counts", strings.Join(counts, ", "))
			ui.PrintInfo("Rounds", strconv.Itoa(rounds))
			fmt.Println()

			if globalConfig.Plain {
				fmt.Print(table.RenderPlain())
			} else {
				fmt.Print(table.Render())
			}

			if missing > 0 {
				fmt.Println()
				ui.PrintWarning(fmt.Sprintf("%d backend(s) missing an installed binary, run 'wasmbench build' first", missing))
			}

			return nil
		},
	}

	return cmd
}

// backendInfo resolves a backend's install state from its provenance record,
// falling back to a bare binary check for hand-installed builds.
func backendInfo(backend manifest.Backend) types.BackendInfo {
	info := types.BackendInfo{
		Name:       backend.Name,
		BinaryPath: backend.BinaryPath(),
		BuildFlag:  backend.BuildFlag(),
	}

	install, ok, err := builders.ReadInstallInfo(backend)
	if err != nil || !ok {
		if _, statErr := os.Stat(info.BinaryPath); statErr == nil {
			info.Installed = true
		}
		return info
	}

	info.Installed = true
	info.BuiltAt = install.BuiltAt
	info.Revision = install.Revision
	return info
}
