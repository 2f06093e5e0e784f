package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the harness configuration",
		Long: `Commands for working with the harness configuration file.

The configuration controls readiness detection, settle and sample timing,
report and history locations, and the proxy build pipeline. Values resolve
from defaults, then the config file, then WASMBENCH_ environment variables.`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the fully resolved configuration as YAML, after defaults, the
config file and environment overrides have been applied.`,
		Example: `  wasmbench config show
  WASMBENCH_HARNESS_CONCURRENCY=4 wasmbench config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBenchConfig()
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}

			if globalConfig.Plain {
				fmt.Print(string(data))
				return nil
			}

			if err := quick.Highlight(os.Stdout, string(data), "yaml", "terminal256", "monokai"); err != nil {
				// Highlighting is cosmetic only
				fmt.Print(string(data))
			}
			return nil
		},
	}
}
