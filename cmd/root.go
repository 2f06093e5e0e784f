package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/di"
	"github.com/proxystack/wasmbench/internal/ui"
	benchConfig "github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

var rootCmd = &cobra.Command{
	Use:   "wasmbench",
	Short: "Proxy wasm VM memory benchmark harness",
	Long: `wasmbench measures the memory cost of wasm VM instances inside a proxy.

It builds the proxy once per wasm runtime flavor (V8, WAMR, Wasmtime, WAVM),
boots each build with an increasing number of wasm filter instances, samples
/proc/[pid]/status once the proxy is ready, and renders the per-instance
memory deltas as a markdown report.

Key capabilities:
* Build proxy binaries per wasm runtime through the containerized CI
* Preflight the suite's wasm modules before burning time on a sweep
* Run the instance-count sweep and record raw /proc status snapshots
* Summarize reports into per-metric delta tables
* Keep a local history of past runs`,
	Example: `  # Scaffold a suite manifest
  wasmbench init my-suite

  # Show the sweep a run would execute
  wasmbench plan

  # Build and install the v8 backend
  wasmbench build v8

  # Execute the sweep
  wasmbench run

  # Re-summarize an existing report
  wasmbench report report_2026-08-29T10-15-00.md`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		// Check if any command in the hierarchy has a plain flag set to true
		plainFlag := globalConfig.Plain
		cmd.Flags().Visit(func(f *pflag.Flag) {
			if f.Name == "plain" && f.Value.String() == "true" {
				plainFlag = true
			}
		})
		globalConfig.Plain = plainFlag

		if !plainFlag && !ui.IsCI() {
			ui.PrintLogo()
		}

		return nil
	},
}

// Container holds the dependency injection container.
var Container = di.NewContainer()

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalConfig.ConfigPath, "config", "c", benchConfig.DefaultConfigPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.SuitePath, "suite", "s", manifest.DefaultFileName, "Path to the suite manifest")
	rootCmd.PersistentFlags().BoolVar(&globalConfig.Plain, "plain", false, "Plain output without colors or spinners")

	// Commands resolve the logger through the container so tests can swap
	// it for a silent one.
	Container.Register("logger", logging.NewStdLogger(os.Stdout))

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewSampleCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewConfigCommand())
}

// loadSuite loads and validates the manifest named by the global flag.
func loadSuite() (*manifest.SuiteManifest, error) {
	return manifest.Load(globalConfig.SuitePath)
}

// loadBenchConfig loads the harness configuration from the global flag.
func loadBenchConfig() (*benchConfig.Config, error) {
	return benchConfig.LoadConfig(globalConfig.ConfigPath)
}

// commandLogger returns the container's logger, falling back to stdout.
func commandLogger() logging.Logger {
	svc, err := Container.Get("logger")
	if err != nil {
		return logging.NewStdLogger(os.Stdout)
	}
	logger, ok := svc.(logging.Logger)
	if !ok {
		return logging.NewStdLogger(os.Stdout)
	}
	return logger
}
