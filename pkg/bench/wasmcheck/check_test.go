package wasmcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxystack/wasmbench/pkg/manifest"
)

// An empty wasm module: just the magic and version. It imports and exports
// nothing, which is enough to exercise instantiation.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func suiteWithModule(module string) manifest.SuiteSettings {
	return manifest.SuiteSettings{
		Name:           "check-test",
		InstanceCounts: []int{1},
		Backends: []manifest.Backend{
			{Name: "v8", Flavor: "v8", ExeDir: "exe_2_v8", Modules: []string{module}},
		},
	}
}

func TestCheckSuiteValidModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.wasm")
	require.NoError(t, os.WriteFile(path, emptyModule, 0644))

	results := CheckSuite(context.Background(), suiteWithModule(path))
	require.Len(t, results, 1)

	assert.True(t, results[0].OK(), "unexpected error: %v", results[0].Err)
	assert.Equal(t, "v8", results[0].Backend)
	assert.Equal(t, int64(len(emptyModule)), results[0].Size)
}

func TestCheckSuiteCorruptModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.wasm")
	require.NoError(t, os.WriteFile(path, []byte("not a wasm module"), 0644))

	results := CheckSuite(context.Background(), suiteWithModule(path))
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.Contains(t, results[0].Err.Error(), "instantiate")
}

func TestCheckSuiteMissingModule(t *testing.T) {
	results := CheckSuite(context.Background(), suiteWithModule("/nonexistent/filter.wasm"))
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.Contains(t, results[0].Err.Error(), "not readable")
}

func TestCheckSuiteNoModules(t *testing.T) {
	suite := manifest.SuiteSettings{
		Backends: []manifest.Backend{{Name: "wamr", Flavor: "wamr", ExeDir: "exe_1_wamr"}},
	}
	assert.Empty(t, CheckSuite(context.Background(), suite))
}
