package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/bench/procfs"
)

// writeStub writes a shell script standing in for a proxy binary.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "envoy-static")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestStartWaitsForReadyMarker(t *testing.T) {
	stub := writeStub(t, `echo "[info] starting main dispatch loop"
exec sleep 60
`)

	p, err := Start(context.Background(), Spec{
		Binary:       stub,
		Config:       "envoy.yaml",
		Concurrency:  2,
		StartTimeout: 5 * time.Second,
	}, logging.NopLogger{})
	require.NoError(t, err)
	defer p.Stop()

	assert.Positive(t, p.PID())

	// The stub is alive and sampleable while "ready".
	status, err := procfs.ReadStatus(p.PID())
	require.NoError(t, err)
	assert.NotEmpty(t, status.Raw)

	require.NoError(t, p.Stop())
	// Stop is idempotent.
	require.NoError(t, p.Stop())
}

func TestStartTimesOutWithoutMarker(t *testing.T) {
	stub := writeStub(t, `echo "still warming up"
exec sleep 60
`)

	_, err := Start(context.Background(), Spec{
		Binary:       stub,
		Config:       "envoy.yaml",
		Concurrency:  2,
		StartTimeout: 200 * time.Millisecond,
	}, logging.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_ready")
}

func TestStartFailsWhenProxyExitsEarly(t *testing.T) {
	stub := writeStub(t, `echo "config error"
exit 1
`)

	_, err := Start(context.Background(), Spec{
		Binary:       stub,
		Config:       "envoy.yaml",
		StartTimeout: 5 * time.Second,
	}, logging.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before the ready marker")
}

func TestStartResolvesSymlink(t *testing.T) {
	stub := writeStub(t, `echo "starting main dispatch loop"
exec sleep 60
`)
	link := filepath.Join(t.TempDir(), "envoy-link")
	require.NoError(t, os.Symlink(stub, link))

	p, err := Start(context.Background(), Spec{
		Binary:       link,
		Config:       "envoy.yaml",
		StartTimeout: 5 * time.Second,
	}, logging.NopLogger{})
	require.NoError(t, err)
	defer p.Stop()

	assert.Equal(t, stub, p.Binary())
}

func TestStartMissingBinary(t *testing.T) {
	_, err := Start(context.Background(), Spec{
		Binary:       "/nonexistent/envoy-static",
		Config:       "envoy.yaml",
		StartTimeout: time.Second,
	}, logging.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_failed")
}

func TestAdminClientMemory(t *testing.T) {
	// The admin interface serializes counters as quoted numbers.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/memory", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"allocated": "8734540",
			"heap_size": "14680064",
			"pageheap_unmapped": "0",
			"pageheap_free": "2318336",
			"total_thread_cache": "602592",
			"total_physical_bytes": "16777216"
		}`))
	}))
	defer srv.Close()

	client := NewAdminClient(srv.Listener.Addr().String())
	stats, err := client.Memory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(8734540), stats.Allocated)
	assert.Equal(t, uint64(14680064), stats.HeapSize)
	assert.Equal(t, uint64(16777216), stats.TotalPhysical)
	assert.Equal(t, uint64(602592), stats.Fields()["total_thread_cache"])
}

func TestAdminClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewAdminClient(srv.Listener.Addr().String())
	_, err := client.Memory(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestMemoryStatsBareNumbers(t *testing.T) {
	var stats MemoryStats
	require.NoError(t, stats.UnmarshalJSON([]byte(`{"allocated": 1024, "heap_size": "2048"}`)))
	assert.Equal(t, uint64(1024), stats.Allocated)
	assert.Equal(t, uint64(2048), stats.HeapSize)
}
