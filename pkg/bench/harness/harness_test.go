package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/bench/procfs"
	"github.com/proxystack/wasmbench/pkg/bench/report"
	"github.com/proxystack/wasmbench/pkg/bench/store"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

// writeStubBackend installs a shell script that behaves like a ready proxy.
func writeStubBackend(t *testing.T, dir string) manifest.Backend {
	t.Helper()
	exeDir := filepath.Join(dir, "exe_stub")
	require.NoError(t, os.MkdirAll(exeDir, 0755))

	script := "#!/bin/sh\necho \"[info] starting main dispatch loop\"\nexec sleep 60\n"
	require.NoError(t, os.WriteFile(filepath.Join(exeDir, "envoy-static"), []byte(script), 0755))

	return manifest.Backend{Name: "stub", Flavor: "wamr", ExeDir: exeDir}
}

func testConfig(reportDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Report.Dir = reportDir
	cfg.Harness.SettleDelay = 10 * time.Millisecond
	cfg.Harness.Samples = 2
	cfg.Harness.SampleInterval = 10 * time.Millisecond
	cfg.Harness.StartTimeout = 5 * time.Second
	cfg.Harness.RoundTimeout = 10 * time.Second
	return cfg
}

func testSuite(backends ...manifest.Backend) *manifest.SuiteManifest {
	return &manifest.SuiteManifest{
		Suite: manifest.SuiteSettings{
			Name:           "harness-test",
			InstanceCounts: []int{1, 2},
			ConfigDir:      "configs",
			Backends:       backends,
		},
	}
}

func TestRunSweep(t *testing.T) {
	tmpDir := t.TempDir()
	backend := writeStubBackend(t, tmpDir)

	history, err := store.Open(filepath.Join(tmpDir, "history"))
	require.NoError(t, err)
	defer history.Close()

	h := New(testConfig(tmpDir), testSuite(backend), history, logging.NopLogger{})

	result, err := h.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Rounds, 2)
	assert.Empty(t, result.Failures)
	assert.True(t, result.Succeeded())
	assert.NotEmpty(t, result.Host)
	assert.Equal(t, "harness-test", result.Suite)

	// Rounds carry real /proc numbers from the stub process.
	for _, round := range result.Rounds {
		assert.Equal(t, "stub", round.Backend)
		assert.Positive(t, round.Metrics["VmRSS"])
		assert.Positive(t, round.Metrics["Threads"])
	}
	assert.Equal(t, 1, result.Rounds[0].Instances)
	assert.Equal(t, 2, result.Rounds[1].Instances)

	// The report file round-trips through the parser and got a summary.
	rounds, err := report.Parse(result.ReportPath)
	require.NoError(t, err)
	assert.Len(t, rounds, 2)

	content, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "## stub_1_vm")
	assert.Contains(t, string(content), "## stub_2_vm")
	assert.Contains(t, string(content), "# Summary")

	// The run landed in history.
	stored, err := history.Get(result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ReportPath, stored.ReportPath)
	assert.Len(t, stored.Rounds, 2)
}

func TestAggregateSnapshots(t *testing.T) {
	snapshots := []*procfs.Status{
		{Fields: map[string]int64{"VmRSS": 48000, "Threads": 5}},
		{Fields: map[string]int64{"VmRSS": 50000, "Threads": 5}},
		{Fields: map[string]int64{"VmRSS": 49000, "Threads": 5}},
	}

	sampled := aggregateSnapshots(snapshots)

	require.Contains(t, sampled, "VmRSS")
	assert.Equal(t, int64(48000), sampled["VmRSS"].Min)
	assert.Equal(t, int64(50000), sampled["VmRSS"].Max)
	assert.InDelta(t, 49000.0, sampled["VmRSS"].Mean, 0.001)

	assert.Equal(t, int64(5), sampled["Threads"].Min)
	assert.Equal(t, int64(5), sampled["Threads"].Max)

	// A metric absent from an intermediate snapshot still aggregates over
	// the snapshots that carried it.
	snapshots[1].Fields = map[string]int64{"VmRSS": 50000}
	sampled = aggregateSnapshots(snapshots)
	assert.Equal(t, int64(5), sampled["Threads"].Min)
	assert.Equal(t, int64(5), sampled["Threads"].Max)
}

func TestRunAggregatesSamples(t *testing.T) {
	tmpDir := t.TempDir()
	backend := writeStubBackend(t, tmpDir)

	cfg := testConfig(tmpDir)
	cfg.Harness.Samples = 3

	h := New(cfg, testSuite(backend), nil, logging.NopLogger{})

	result, err := h.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rounds, 2)

	// Every reported metric carries its range across the three snapshots,
	// not just the final value.
	for _, round := range result.Rounds {
		require.NotEmpty(t, round.Sampled)
		for key, value := range round.Metrics {
			r, ok := round.Sampled[key]
			require.True(t, ok, "no range for %s", key)
			assert.LessOrEqual(t, r.Min, value)
			assert.GreaterOrEqual(t, r.Max, value)
			assert.GreaterOrEqual(t, r.Mean, float64(r.Min))
			assert.LessOrEqual(t, r.Mean, float64(r.Max))
		}
	}
}

func TestRunRecordsFailuresAndContinues(t *testing.T) {
	tmpDir := t.TempDir()
	good := writeStubBackend(t, tmpDir)
	broken := manifest.Backend{
		Name:   "broken",
		Flavor: "wavm",
		ExeDir: filepath.Join(tmpDir, "exe_missing"),
	}

	h := New(testConfig(tmpDir), testSuite(broken, good), nil, logging.NopLogger{})

	result, err := h.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Failures, 2, "both rounds of the broken backend fail")
	assert.Len(t, result.Rounds, 2, "the good backend still gets measured")
	assert.False(t, result.Succeeded())
	for _, failure := range result.Failures {
		assert.Equal(t, "broken", failure.Backend)
	}
}

func TestRunAllRoundsFailed(t *testing.T) {
	tmpDir := t.TempDir()
	broken := manifest.Backend{
		Name:   "broken",
		Flavor: "wavm",
		ExeDir: filepath.Join(tmpDir, "exe_missing"),
	}

	h := New(testConfig(tmpDir), testSuite(broken), nil, logging.NopLogger{})

	result, err := h.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every round of the sweep failed")
	assert.Len(t, result.Failures, 2)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	tmpDir := t.TempDir()
	backend := writeStubBackend(t, tmpDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := New(testConfig(tmpDir), testSuite(backend), nil, logging.NopLogger{})
	_, err := h.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_cancelled")
}

func TestBuildContainer(t *testing.T) {
	tmpDir := t.TempDir()
	backend := writeStubBackend(t, tmpDir)
	cfg := testConfig(tmpDir)
	suite := testSuite(backend)

	container, err := BuildContainer(cfg, suite, nil, logging.NopLogger{})
	require.NoError(t, err)

	h, err := FromContainer(container)
	require.NoError(t, err)
	assert.NotNil(t, h)
}
