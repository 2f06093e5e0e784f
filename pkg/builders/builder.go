// Package builders produces per-backend proxy release binaries by driving
// the proxy's containerized CI build with a single wasm VM flavor selected.
package builders

import (
	"context"

	"github.com/proxystack/wasmbench/pkg/manifest"
)

type Builder interface {
	// Build produces a release binary for the backend and returns where
	// the CI pipeline left it.
	Build(ctx context.Context, backend manifest.Backend) (*BuildResult, error)

	// VerifyDependencies checks the tooling the builder shells out to.
	VerifyDependencies() error
}

type BuildResult struct {
	// OutputPath is the stripped release binary inside the source tree.
	OutputPath string

	// Revision is the source checkout HEAD, when it is a git repository.
	Revision string
}

type BuildError struct {
	Err    error
	Stderr string
	Step   string
}

func (e *BuildError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
