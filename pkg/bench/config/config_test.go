package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "starting main dispatch loop", cfg.Harness.ReadyMarker)
	assert.Equal(t, 5*time.Second, cfg.Harness.StartTimeout)
	assert.Equal(t, time.Second, cfg.Harness.SettleDelay)
	assert.Equal(t, 2, cfg.Harness.Concurrency)
	assert.Equal(t, 1, cfg.Harness.Samples)
	assert.Equal(t, "bazel.release.server_only", cfg.Build.Target)
	assert.Equal(t, "linux/amd64/build_envoy_release_stripped/envoy", cfg.Build.OutputPath)
	assert.Equal(t, 20, cfg.History.KeepLast)
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Harness, cfg.Harness)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	content := `harness:
  ready_marker: "all clusters initialized"
  start_timeout: 30s
  samples: 5
report:
  dir: /var/lib/wasmbench/reports
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "all clusters initialized", cfg.Harness.ReadyMarker)
	assert.Equal(t, 30*time.Second, cfg.Harness.StartTimeout)
	assert.Equal(t, 5, cfg.Harness.Samples)
	assert.Equal(t, "/var/lib/wasmbench/reports", cfg.Report.Dir)

	// Untouched keys keep their defaults.
	assert.Equal(t, 2, cfg.Harness.Concurrency)
	assert.Equal(t, "bazel.release.server_only", cfg.Build.Target)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("WASMBENCH_HARNESS_CONCURRENCY", "4")
	t.Setenv("WASMBENCH_REPORT_DIR", "/tmp/reports")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Harness.Concurrency)
	assert.Equal(t, "/tmp/reports", cfg.Report.Dir)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".wasmbench", "config.yaml"),
		ExpandPath("~/.wasmbench/config.yaml"))
	assert.Equal(t, "/etc/wasmbench.yaml", ExpandPath("/etc/wasmbench.yaml"))
}
