package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/pkg/builders"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

func NewBuildCommand() *cobra.Command {
	var skipInstall bool

	cmd := &cobra.Command{
		Use:   "build [backend...]",
		Short: "Build proxy binaries for the suite backends",
		Long: `Build the proxy binary for one or more suite backends.

For each backend the build flips the wasm runtime selector in the source
tree's build-args file, runs the proxy's docker-wrapped CI pipeline, and
installs the release binary into the backend's exe dir together with a
provenance record. Build output streams to the terminal; release builds
take a while.

With no arguments every backend in the suite is built in order.`,
		Example: `  # Build every backend in the suite
  wasmbench build

  # Build only the v8 backend
  wasmbench build v8

  # Build without installing the binary
  wasmbench build wamr-1-1-0 --skip-install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := loadSuite()
			if err != nil {
				return err
			}
			cfg, err := loadBenchConfig()
			if err != nil {
				return err
			}

			backends, err := resolveBackends(suite, args)
			if err != nil {
				return err
			}

			builder := builders.NewDockerBuilder(cfg.Build, commandLogger())
			if err := builder.VerifyDependencies(); err != nil {
				return err
			}

			for _, backend := range backends {
				ui.PrintHighlight(fmt.Sprintf("Building %s (%s)", backend.Name, backend.BuildFlag()))

				result, err := builder.Build(cmd.Context(), backend)
				if err != nil {
					return fmt.Errorf("build of %s failed: %w", backend.Name, err)
				}

				if skipInstall {
					ui.PrintSuccess(fmt.Sprintf("built %s, artifact at %s", backend.Name, result.OutputPath))
					continue
				}

				if err := builders.Install(result, backend, cfg.Build.Target); err != nil {
					return fmt.Errorf("install of %s failed: %w", backend.Name, err)
				}
				ui.PrintSuccess(fmt.Sprintf("installed %s to %s", backend.Name, backend.BinaryPath()))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Build without installing the binary into the exe dir")

	return cmd
}

// resolveBackends maps command arguments to suite backends, accepting either
// backend names or runtime flavors. No arguments selects every backend.
func resolveBackends(suite *manifest.SuiteManifest, args []string) ([]manifest.Backend, error) {
	if len(args) == 0 {
		return suite.Suite.Backends, nil
	}

	var selected []manifest.Backend
	for _, arg := range args {
		if backend, ok := suite.Suite.FindBackend(arg); ok {
			selected = append(selected, backend)
			continue
		}

		matched := false
		for _, backend := range suite.Suite.Backends {
			if backend.Flavor == arg {
				selected = append(selected, backend)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("no backend named %q in suite (have: %s)",
				arg, strings.Join(suite.Suite.BackendNames(), ", "))
		}
	}
	return selected, nil
}
