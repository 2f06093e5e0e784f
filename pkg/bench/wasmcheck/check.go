// Package wasmcheck preflights the wasm filter modules a suite references.
// A module that cannot instantiate would waste a full proxy build-and-measure
// round, so it is caught before any proxy starts.
package wasmcheck

import (
	"context"
	"fmt"
	"os"

	extism "github.com/extism/go-sdk"

	"github.com/proxystack/wasmbench/pkg/manifest"
)

// Result is the outcome of checking one module file.
type Result struct {
	Backend string
	Module  string
	Size    int64
	Err     error
}

// OK reports whether the module instantiated.
func (r Result) OK() bool {
	return r.Err == nil
}

// CheckSuite instantiates every module referenced by the suite's backends.
// It returns one Result per (backend, module) pair and never short-circuits,
// so a single report covers all problems.
func CheckSuite(ctx context.Context, suite manifest.SuiteSettings) []Result {
	var results []Result
	for _, backend := range suite.Backends {
		for _, module := range backend.Modules {
			results = append(results, checkModule(ctx, backend.Name, module))
		}
	}
	return results
}

func checkModule(ctx context.Context, backend, path string) Result {
	result := Result{Backend: backend, Module: path}

	info, err := os.Stat(path)
	if err != nil {
		result.Err = fmt.Errorf("module not readable: %w", err)
		return result
	}
	result.Size = info.Size()

	wasmManifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmFile{Path: path},
		},
	}
	pluginConfig := extism.PluginConfig{
		// Proxy filters are built against WASI; instantiation fails
		// without it.
		EnableWasi: true,
	}

	plugin, err := extism.NewPlugin(ctx, wasmManifest, pluginConfig, []extism.HostFunction{})
	if err != nil {
		result.Err = fmt.Errorf("failed to instantiate module: %w", err)
		return result
	}
	plugin.Close(ctx)

	return result
}
