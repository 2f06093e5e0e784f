package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/di"
	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/bench/harness"
	"github.com/proxystack/wasmbench/pkg/types"
)

func NewRunCommand() *cobra.Command {
	// Configuration options
	var config struct {
		logFile   string
		logLevel  string
		noHistory bool
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the benchmark sweep",
		Long: `Run the full benchmark sweep for the current suite.

For every backend and instance count the harness boots the proxy with the
matching bootstrap config, waits for the dispatch loop to come up, lets the
process settle, snapshots /proc/[pid]/status, and appends the raw block to
a timestamped markdown report. A delta summary table is appended once the
sweep finishes, and the run is saved to the local history.

A round that fails (missing binary, boot timeout) is recorded and the sweep
continues with the next round.`,
		Example: `  # Run with default settings
  wasmbench run

  # Run with debug logging to a file
  wasmbench run --log-level debug --log-file ./bench.log

  # Run without recording history
  wasmbench run --no-history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Create app configuration for fx
			appConfig := di.NewAppConfig(
				globalConfig.ConfigPath,
				globalConfig.SuitePath,
				config.logLevel,
				config.logFile,
				config.noHistory,
			)

			var (
				result *types.RunResult
				runErr error
			)

			// Setup the fx app with our module
			app := fx.New(
				// Provide app configuration
				fx.Supply(appConfig),

				// Include all our dependency providers
				di.Module,

				// Keep fx's own lifecycle chatter out of the report output
				fx.NopLogger,

				// The sweep runs inside the invocation, so a failed provider
				// (bad manifest, unreadable config) surfaces before any
				// proxy is started.
				fx.Invoke(func(h *harness.Harness) {
					result, runErr = h.Run(ctx)
				}),

				fx.StartTimeout(30*time.Second),
				fx.StopTimeout(30*time.Second),
			)

			if err := app.Err(); err != nil {
				return err
			}

			// Start and stop immediately so the store's OnStop hook closes
			// the history database cleanly.
			if err := app.Start(context.Background()); err != nil {
				return fmt.Errorf("failed to start run: %w", err)
			}
			if err := app.Stop(context.Background()); err != nil {
				return fmt.Errorf("error during shutdown: %w", err)
			}

			if runErr != nil {
				return runErr
			}

			printRunResult(result)
			return nil
		},
	}

	// Register command flags
	cmd.Flags().StringVarP(&config.logFile, "log-file", "l", "", "Log file path (logs to stdout if not specified)")
	cmd.Flags().StringVarP(&config.logLevel, "log-level", "L", "info", "Log level (error, info, debug)")
	cmd.Flags().BoolVar(&config.noHistory, "no-history", false, "Skip saving the run to the history database")

	return cmd
}

func printRunResult(result *types.RunResult) {
	fmt.Println()
	ui.PrintInfo("Run", result.ID)
	ui.PrintInfo("Report", result.ReportPath)
	ui.PrintInfo("Rounds", strconv.Itoa(len(result.Rounds)))
	ui.PrintInfo("Duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Second).String())

	if len(result.Failures) > 0 {
		for _, f := range result.Failures {
			ui.PrintWarning(fmt.Sprintf("%s with %d instance(s): %s", f.Backend, f.Instances, f.Reason))
		}
		return
	}
	ui.PrintSuccess("sweep completed")
}
