package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/bench/procfs"
)

func NewSampleCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "sample [backend...]",
		Short: "Snapshot a running proxy's memory",
		Long: `Read /proc/[pid]/status of an already-running proxy without starting one.

The proxy is located by walking /proc for a process whose command line
starts with the backend's binary path. Useful for spot checks against a
proxy launched by hand, or one kept alive between sweeps.

With no arguments every suite backend is tried; backends with no running
process are reported and skipped.`,
		Example: `  # Snapshot every running backend
  wasmbench sample

  # Snapshot one backend, raw status lines
  wasmbench sample v8 --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := loadSuite()
			if err != nil {
				return err
			}

			backends, err := resolveBackends(suite, args)
			if err != nil {
				return err
			}

			table := ui.NewTable([]string{"BACKEND", "PID", "VMSIZE (KB)", "VMRSS (KB)", "THREADS"})
			found := 0
			for _, backend := range backends {
				status, err := procfs.ReadBinaryStatus(backend.BinaryPath())
				if err != nil {
					ui.PrintWarning(fmt.Sprintf("%s: %v", backend.Name, err))
					continue
				}
				found++

				if raw {
					ui.PrintHighlight(backend.Name)
					fmt.Print(status.Raw)
					continue
				}

				table.AddRow(backend.Name,
					strconv.Itoa(status.PID),
					metricCell(status, procfs.KeyVmSize),
					metricCell(status, procfs.KeyVmRSS),
					metricCell(status, procfs.KeyThreads))
			}

			if found == 0 {
				return fmt.Errorf("no running proxy found for any of the %d backend(s)", len(backends))
			}
			if raw {
				return nil
			}

			if globalConfig.Plain {
				fmt.Print(table.RenderPlain())
			} else {
				fmt.Print(table.Render())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw status lines instead of a table")

	return cmd
}

func metricCell(status *procfs.Status, key string) string {
	v, ok := status.Fields[key]
	if !ok {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}
