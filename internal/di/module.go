package di

import (
	"context"

	"go.uber.org/fx"

	"github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/harness"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/bench/store"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

// AppConfig carries the run command's flags into the fx graph.
type AppConfig struct {
	ConfigPath string
	SuitePath  string
	LogLevel   string
	LogFile    string
	NoHistory  bool
}

// NewAppConfig creates the fx app configuration.
func NewAppConfig(configPath, suitePath, logLevel, logFile string, noHistory bool) AppConfig {
	return AppConfig{
		ConfigPath: configPath,
		SuitePath:  suitePath,
		LogLevel:   logLevel,
		LogFile:    logFile,
		NoHistory:  noHistory,
	}
}

// Module provides everything a benchmark run needs.
var Module = fx.Options(
	fx.Provide(
		ProvideConfig,
		ProvideLogger,
		ProvideSuite,
		ProvideStore,
		ProvideHarness,
	),
)

// ProvideConfig loads the harness configuration.
func ProvideConfig(app AppConfig) (*config.Config, error) {
	return config.LoadConfig(app.ConfigPath)
}

// ProvideLogger builds the run logger.
func ProvideLogger(app AppConfig) (logging.Logger, error) {
	return logging.NewZapLogger(app.LogLevel, app.LogFile)
}

// ProvideSuite loads and validates the suite manifest.
func ProvideSuite(app AppConfig) (*manifest.SuiteManifest, error) {
	return manifest.Load(app.SuitePath)
}

// ProvideStore opens the history database and ties its lifetime to the app.
// It returns nil when history is disabled.
func ProvideStore(app AppConfig, cfg *config.Config, lc fx.Lifecycle) (*store.Store, error) {
	if app.NoHistory {
		return nil, nil
	}

	s, err := store.Open(config.ExpandPath(cfg.History.Dir))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})
	return s, nil
}

// ProvideHarness assembles the harness through its dig container.
func ProvideHarness(cfg *config.Config, suite *manifest.SuiteManifest, history *store.Store, logger logging.Logger) (*harness.Harness, error) {
	container, err := harness.BuildContainer(cfg, suite, history, logger)
	if err != nil {
		return nil, err
	}
	return harness.FromContainer(container)
}
