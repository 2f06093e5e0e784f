package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	globalConfig "github.com/proxystack/wasmbench/internal/config"
	"github.com/proxystack/wasmbench/internal/ui"
	"github.com/proxystack/wasmbench/internal/ui/operations"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

func NewInitCommand() *cobra.Command {
	var flavors []string

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Scaffold a suite manifest",
		Long: `Create a suite manifest in the current directory.

The manifest declares the proxy backends under measurement and the wasm VM
instance counts to sweep. Pick runtime flavors interactively or pass them
with --flavor.`,
		Example: `  # Interactive flavor selection
  wasmbench init envoy-wasm

  # Non-interactive
  wasmbench init envoy-wasm --flavor v8 --flavor wamr`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "wasm-memory"
			if len(args) > 0 {
				name = args[0]
			}

			if _, err := os.Stat(globalConfig.SuitePath); err == nil {
				return fmt.Errorf("%s already exists, not overwriting", globalConfig.SuitePath)
			}

			if len(flavors) == 0 {
				if globalConfig.Plain {
					flavors = manifest.Flavors
				} else {
					selected, err := selectFlavors()
					if err != nil {
						return fmt.Errorf("error during flavor selection: %w", err)
					}
					flavors = selected
				}
			}

			scaffold := func() (interface{}, error) {
				m := manifest.DefaultManifest(name)
				m.Suite.Backends = filterBackends(m.Suite.Backends, flavors)
				if err := m.Validate(); err != nil {
					return nil, err
				}
				if err := m.Save(globalConfig.SuitePath); err != nil {
					return nil, err
				}
				return fmt.Sprintf("created %s with %d backend(s)", globalConfig.SuitePath, len(m.Suite.Backends)), nil
			}

			if globalConfig.Plain {
				result, err := scaffold()
				if err != nil {
					return err
				}
				fmt.Println(result)
				return nil
			}

			return operations.WithSpinner("Writing suite manifest...", scaffold, func(result interface{}) {
				if msg, ok := result.(string); ok {
					ui.PrintSuccess(msg)
				}
			})
		},
	}

	cmd.Flags().StringArrayVarP(&flavors, "flavor", "f", nil, "Runtime flavors to include (v8, wamr, wasmtime, wavm)")

	return cmd
}

func selectFlavors() ([]string, error) {
	options := make([]huh.Option[string], 0, len(manifest.Flavors))
	for _, f := range manifest.Flavors {
		options = append(options, huh.NewOption(f, f).Selected(true))
	}

	baseStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ui.InfoColor))
	theme := huh.Theme{
		Focused: huh.FieldStyles{
			Title:          baseStyle.Bold(true),
			SelectedOption: ui.SuccessStyle,
			SelectSelector: baseStyle,
		},
	}

	var flavors []string
	selectField := huh.NewMultiSelect[string]().
		Title("Choose the wasm runtimes to benchmark").
		Options(options...).
		Value(&flavors)

	form := huh.NewForm(huh.NewGroup(selectField))
	if err := form.WithTheme(&theme).Run(); err != nil {
		return nil, err
	}
	if len(flavors) == 0 {
		return nil, fmt.Errorf("no runtime flavor selected")
	}
	return flavors, nil
}

// filterBackends keeps the scaffold backends matching the chosen flavors and
// synthesizes one for any flavor the scaffold has no entry for.
func filterBackends(backends []manifest.Backend, flavors []string) []manifest.Backend {
	byFlavor := make(map[string]manifest.Backend, len(backends))
	for _, b := range backends {
		byFlavor[b.Flavor] = b
	}

	var selected []manifest.Backend
	for _, f := range flavors {
		if b, ok := byFlavor[f]; ok {
			selected = append(selected, b)
			continue
		}
		selected = append(selected, manifest.Backend{
			Name:   f,
			Flavor: f,
			ExeDir: "exe_" + f,
		})
	}
	return selected
}
