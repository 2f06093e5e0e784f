package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration constants
const (
	// DefaultConfigPath is the default path to the config file
	DefaultConfigPath = "~/.wasmbench/config.yaml"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "WASMBENCH_"
)

// Config holds all configuration for the wasmbench harness
type Config struct {
	// Harness sweep options
	Harness HarnessConfig `koanf:"harness" yaml:"harness"`

	// Report output options
	Report ReportConfig `koanf:"report" yaml:"report"`

	// Run history options
	History HistoryConfig `koanf:"history" yaml:"history"`

	// Backend build options
	Build BuildConfig `koanf:"build" yaml:"build"`
}

// HarnessConfig holds sweep and sampling configuration
type HarnessConfig struct {
	// Log line marking proxy readiness
	ReadyMarker string `koanf:"ready_marker" yaml:"ready_marker"`

	// How long to wait for the ready marker
	StartTimeout time.Duration `koanf:"start_timeout" yaml:"start_timeout"`

	// Pause between readiness and the first sample, and again after kill
	SettleDelay time.Duration `koanf:"settle_delay" yaml:"settle_delay"`

	// Proxy worker thread count (--concurrency)
	Concurrency int `koanf:"concurrency" yaml:"concurrency"`

	// Samples per round; the last one lands in the report
	Samples int `koanf:"samples" yaml:"samples"`

	// Pause between consecutive samples
	SampleInterval time.Duration `koanf:"sample_interval" yaml:"sample_interval"`

	// Upper bound on a single (backend, count) round
	RoundTimeout time.Duration `koanf:"round_timeout" yaml:"round_timeout"`
}

// ReportConfig holds report output configuration
type ReportConfig struct {
	// Directory for report_<timestamp>.md files
	Dir string `koanf:"dir" yaml:"dir"`
}

// HistoryConfig holds run history configuration
type HistoryConfig struct {
	// Directory of the history database
	Dir string `koanf:"dir" yaml:"dir"`

	// Runs kept by prune
	KeepLast int `koanf:"keep_last" yaml:"keep_last"`
}

// BuildConfig holds backend build configuration
type BuildConfig struct {
	// Containerized CI entrypoint script
	CIScript string `koanf:"ci_script" yaml:"ci_script"`

	// CI target passed to the script
	Target string `koanf:"target" yaml:"target"`

	// Build-args file carrying the wasm= backend selector
	BuildArgsFile string `koanf:"build_args_file" yaml:"build_args_file"`

	// Where the CI build leaves the release binary
	OutputPath string `koanf:"output_path" yaml:"output_path"`

	// Proxy source checkout, used for revision stamping
	SourceDir string `koanf:"source_dir" yaml:"source_dir"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Harness: HarnessConfig{
			ReadyMarker:    "starting main dispatch loop",
			StartTimeout:   5 * time.Second,
			SettleDelay:    1 * time.Second,
			Concurrency:    2,
			Samples:        1,
			SampleInterval: 500 * time.Millisecond,
			RoundTimeout:   60 * time.Second,
		},
		Report: ReportConfig{
			Dir: ".",
		},
		History: HistoryConfig{
			Dir:      filepath.Join(homeDir, ".wasmbench", "history"),
			KeepLast: 20,
		},
		Build: BuildConfig{
			CIScript:      "./ci/run_envoy_docker.sh",
			Target:        "bazel.release.server_only",
			BuildArgsFile: "wasm_build_args",
			OutputPath:    "linux/amd64/build_envoy_release_stripped/envoy",
			SourceDir:     ".",
		},
	}
}

// LoadConfig loads configuration from the specified path and environment variables
func LoadConfig(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Set default values
	defaultConfig := DefaultConfig()
	err := k.Load(newStructProvider(defaultConfig), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// Expand tilde in config path if needed
	expandedPath := ExpandPath(configPath)

	// Try to load from config file (if it exists)
	if _, err := os.Stat(expandedPath); err == nil {
		if err := k.Load(file.Provider(expandedPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Load from environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal into Config struct
	var config Config
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:      &config,
			ErrorUnused: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ExpandPath resolves a leading ~/ against the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// structProvider is a provider that loads configuration from a struct
type structProvider struct {
	cfg interface{}
}

// newStructProvider creates a new struct provider
func newStructProvider(cfg interface{}) *structProvider {
	return &structProvider{cfg: cfg}
}

// Read reads the configuration from the struct
func (s *structProvider) Read() (map[string]interface{}, error) {
	var out map[string]interface{}

	// Use mapstructure to convert struct to map
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "koanf",
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(s.cfg); err != nil {
		return nil, err
	}

	return out, nil
}

// ReadBytes is required by the Provider interface but not used for struct providers
func (s *structProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not supported for struct provider")
}
