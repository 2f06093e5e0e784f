package harness

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/bench/store"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

// BuildContainer wires the harness dependency graph. history may be nil.
func BuildContainer(cfg *config.Config, suite *manifest.SuiteManifest, history *store.Store, logger logging.Logger) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}
	if err := container.Provide(func() *manifest.SuiteManifest { return suite }); err != nil {
		return nil, fmt.Errorf("failed to provide suite: %w", err)
	}
	if err := container.Provide(func() *store.Store { return history }); err != nil {
		return nil, fmt.Errorf("failed to provide history store: %w", err)
	}
	if err := container.Provide(func() logging.Logger { return logger }); err != nil {
		return nil, fmt.Errorf("failed to provide logger: %w", err)
	}

	if err := container.Provide(New); err != nil {
		return nil, fmt.Errorf("failed to provide harness: %w", err)
	}

	return container, nil
}

// FromContainer extracts the assembled Harness.
func FromContainer(container *dig.Container) (*Harness, error) {
	var h *Harness
	if err := container.Invoke(func(built *Harness) {
		h = built
	}); err != nil {
		return nil, fmt.Errorf("failed to resolve harness: %w", err)
	}
	return h, nil
}
