// Package manifest defines the benchmark suite file (wasmbench.yml) that
// declares which proxy builds get measured and at which instance counts.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// DefaultFileName is the suite manifest looked up in the working directory.
const DefaultFileName = "wasmbench.yml"

// DefaultBinaryName is the proxy binary expected inside a backend exe dir.
const DefaultBinaryName = "envoy-static"

// Flavors are the mutually exclusive wasm VM builds the proxy supports.
// Exactly one of them is selected per build through the wasm= build flag.
var Flavors = []string{"v8", "wamr", "wasmtime", "wavm"}

type SuiteManifest struct {
	Suite SuiteSettings `yaml:"suite" toml:"suite" validate:"required"`
}

type SuiteSettings struct {
	Name string `yaml:"name" toml:"name" validate:"required"`

	// InstanceCounts is the wasm VM instance sweep, ordered. Each count n
	// pairs with a bootstrap config declaring n wasm filter instances.
	InstanceCounts []int `yaml:"instance_counts" toml:"instance_counts" validate:"min=1,dive,min=1"`

	// ConfigDir holds the per-round proxy bootstrap configs.
	ConfigDir string `yaml:"config_dir" toml:"config_dir"`

	Backends []Backend `yaml:"backends" toml:"backends" validate:"min=1,dive"`
}

// Backend is one proxy build under measurement.
type Backend struct {
	// Name labels report blocks and summary rows, e.g. "wamr-1-1-0".
	Name string `yaml:"name" toml:"name" validate:"required"`

	// Flavor selects the wasm VM compiled into the proxy.
	Flavor string `yaml:"flavor" toml:"flavor" validate:"required,oneof=v8 wamr wasmtime wavm"`

	// ExeDir is the directory the built binary is installed into.
	ExeDir string `yaml:"exe_dir" toml:"exe_dir" validate:"required"`

	// Binary overrides the binary file name inside ExeDir.
	Binary string `yaml:"binary,omitempty" toml:"binary,omitempty"`

	// ConfigFamily picks the bootstrap config set; defaults to Flavor.
	// Distinct wamr variants share one family this way.
	ConfigFamily string `yaml:"config_family,omitempty" toml:"config_family,omitempty"`

	// AdminAddress enables admin /memory sampling when set, host:port or
	// unix:/path.
	AdminAddress string `yaml:"admin_address,omitempty" toml:"admin_address,omitempty"`

	// Modules lists wasm filter files to preflight before a run.
	Modules []string `yaml:"modules,omitempty" toml:"modules,omitempty"`
}

// BinaryPath returns the full path of the backend's proxy binary.
func (b Backend) BinaryPath() string {
	binary := b.Binary
	if binary == "" {
		binary = DefaultBinaryName
	}
	return filepath.Join(b.ExeDir, binary)
}

// BuildFlag returns the single active build-args line for this backend.
func (b Backend) BuildFlag() string {
	return "wasm=" + b.Flavor
}

// ConfigFor resolves the bootstrap config path for a backend at an instance
// count, following the envoy_<family>_<count>.yaml convention.
func (s SuiteSettings) ConfigFor(b Backend, instances int) string {
	family := b.ConfigFamily
	if family == "" {
		family = b.Flavor
	}
	return filepath.Join(s.ConfigDir, fmt.Sprintf("envoy_%s_%d.yaml", family, instances))
}

// BackendNames returns backend names in declaration order.
func (s SuiteSettings) BackendNames() []string {
	names := make([]string, len(s.Backends))
	for i, b := range s.Backends {
		names[i] = b.Name
	}
	return names
}

// FindBackend looks a backend up by name.
func (s SuiteSettings) FindBackend(name string) (Backend, bool) {
	for _, b := range s.Backends {
		if b.Name == name {
			return b, true
		}
	}
	return Backend{}, false
}

// Validate checks struct constraints plus backend name uniqueness.
func (m *SuiteManifest) Validate() error {
	if err := validator.New().Struct(m); err != nil {
		return fmt.Errorf("invalid suite manifest: %w", err)
	}

	seen := make(map[string]bool, len(m.Suite.Backends))
	for _, b := range m.Suite.Backends {
		if seen[b.Name] {
			return fmt.Errorf("invalid suite manifest: duplicate backend name %q", b.Name)
		}
		seen[b.Name] = true
	}

	return nil
}

// Load reads and validates a suite manifest file.
func Load(path string) (*SuiteManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite manifest: %w", err)
	}

	var m SuiteManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse suite manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Save writes the manifest as YAML.
func (m *SuiteManifest) Save(path string) error {
	data, err := m.MarshalYaml()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (m *SuiteManifest) MarshalYaml() ([]byte, error) {
	return yaml.Marshal(m)
}

func (m *SuiteManifest) MarshalToml() ([]byte, error) {
	return toml.Marshal(m)
}

// DefaultManifest returns the classic three-backend sweep the harness grew
// up benchmarking.
func DefaultManifest(name string) *SuiteManifest {
	return &SuiteManifest{
		Suite: SuiteSettings{
			Name:           name,
			InstanceCounts: []int{1, 2, 3},
			ConfigDir:      "configs",
			Backends: []Backend{
				{Name: "v8", Flavor: "v8", ExeDir: "exe_2_v8"},
				{Name: "wasmtime", Flavor: "wasmtime", ExeDir: "exe_4_wasmtime"},
				{Name: "wamr", Flavor: "wamr", ExeDir: "exe_1_wamr"},
			},
		},
	}
}
