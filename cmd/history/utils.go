package history

import (
	globalConfig "github.com/proxystack/wasmbench/internal/config"
	benchConfig "github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/store"
)

// openStore opens the history database named by the configuration. Callers
// own the returned store and must close it.
func openStore() (*store.Store, *benchConfig.Config, error) {
	cfg, err := benchConfig.LoadConfig(globalConfig.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(benchConfig.ExpandPath(cfg.History.Dir))
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}
