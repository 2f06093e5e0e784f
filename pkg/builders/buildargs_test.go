package builders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxystack/wasmbench/pkg/manifest"
)

func TestSelectFlavorCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wasm_build_args")

	require.NoError(t, SelectFlavor(path, "wamr"))

	active, err := ActiveFlavor(path)
	require.NoError(t, err)
	assert.Equal(t, "wamr", active)

	// All known flavors are present, the inactive ones commented.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "wasm=wamr")
	assert.Contains(t, string(content), "# wasm=v8")
	assert.Contains(t, string(content), "# wasm=wasmtime")
	assert.Contains(t, string(content), "# wasm=wavm")
}

func TestSelectFlavorSwitchesActiveLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wasm_build_args")
	require.NoError(t, os.WriteFile(path, []byte("wasm=wamr\n# wasm=wasmtime\n# wasm=wavm\n"), 0644))

	require.NoError(t, SelectFlavor(path, "wasmtime"))

	active, err := ActiveFlavor(path)
	require.NoError(t, err)
	assert.Equal(t, "wasmtime", active)
}

func TestSelectFlavorPreservesOtherLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wasm_build_args")
	original := "# build args for the wasm backend sweep\nbuild --define deprecated_features=disabled\nwasm=v8\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	require.NoError(t, SelectFlavor(path, "wavm"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# build args for the wasm backend sweep")
	assert.Contains(t, string(content), "build --define deprecated_features=disabled")
	assert.Contains(t, string(content), "\nwasm=wavm")
	assert.Contains(t, string(content), "# wasm=v8")
}

func TestSelectFlavorRejectsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wasm_build_args")
	err := SelectFlavor(path, "jvm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown wasm flavor")
}

func TestSelectFlavorIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wasm_build_args")

	require.NoError(t, SelectFlavor(path, "v8"))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, SelectFlavor(path, "v8"))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestActiveFlavorErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "none-active",
			content: "# wasm=v8\n# wasm=wamr\n",
			wantErr: "no active wasm= line",
		},
		{
			name:    "two-active",
			content: "wasm=v8\nwasm=wamr\n",
			wantErr: "2 active wasm= lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "wasm_build_args")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := ActiveFlavor(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInstallAndReadInfo(t *testing.T) {
	tmpDir := t.TempDir()

	artifact := filepath.Join(tmpDir, "envoy")
	require.NoError(t, os.WriteFile(artifact, []byte("#!/bin/sh\nexit 0\n"), 0755))

	backend := manifest.Backend{
		Name:   "wamr-1-1-0",
		Flavor: "wamr",
		ExeDir: filepath.Join(tmpDir, "exe_1_wamr_1_1_0"),
	}

	result := &BuildResult{OutputPath: artifact, Revision: "0123456789abcdef"}
	require.NoError(t, Install(result, backend, "bazel.release.server_only"))

	installed, err := os.Stat(backend.BinaryPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), installed.Mode().Perm())

	info, ok, err := ReadInstallInfo(backend)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wamr-1-1-0", info.Backend)
	assert.Equal(t, "wamr", info.Flavor)
	assert.Equal(t, "0123456789abcdef", info.Revision)
	assert.False(t, info.BuiltAt.IsZero())
}

func TestReadInstallInfoMissing(t *testing.T) {
	backend := manifest.Backend{Name: "v8", Flavor: "v8", ExeDir: t.TempDir()}

	_, ok, err := ReadInstallInfo(backend)
	require.NoError(t, err)
	assert.False(t, ok)
}
