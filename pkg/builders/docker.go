package builders

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/manifest"
)

// ciEntrypoint is the script the docker wrapper runs inside the build
// container.
const ciEntrypoint = "./ci/do_ci.sh"

type dockerBuilder struct {
	cfg    config.BuildConfig
	logger logging.Logger
}

// NewDockerBuilder creates a builder driving the proxy's docker-wrapped CI
// pipeline.
func NewDockerBuilder(cfg config.BuildConfig, logger logging.Logger) Builder {
	return &dockerBuilder{cfg: cfg, logger: logger}
}

func (b *dockerBuilder) VerifyDependencies() error {
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("docker not found in PATH: %w", err)
	}

	script := filepath.Join(b.cfg.SourceDir, b.cfg.CIScript)
	if _, err := os.Stat(script); err != nil {
		return fmt.Errorf("CI script %s not found: %w", script, err)
	}
	return nil
}

func (b *dockerBuilder) Build(ctx context.Context, backend manifest.Backend) (*BuildResult, error) {
	argsFile := filepath.Join(b.cfg.SourceDir, b.cfg.BuildArgsFile)
	if err := SelectFlavor(argsFile, backend.Flavor); err != nil {
		return nil, &BuildError{Err: err, Step: "select-flavor"}
	}
	b.logger.Printf("selected %s in %s", backend.BuildFlag(), argsFile)

	// Release builds of the proxy take a long time; stream output instead
	// of buffering it.
	cmd := exec.CommandContext(ctx, b.cfg.CIScript, fmt.Sprintf("%s %s", ciEntrypoint, b.cfg.Target))
	cmd.Dir = b.cfg.SourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	b.logger.Printf("building %s (%s)", backend.Name, b.cfg.Target)
	if err := cmd.Run(); err != nil {
		return nil, &BuildError{Err: err, Step: "ci-build"}
	}

	output := filepath.Join(b.cfg.SourceDir, b.cfg.OutputPath)
	if _, err := os.Stat(output); err != nil {
		return nil, &BuildError{
			Err:  fmt.Errorf("build finished but artifact %s is missing: %w", output, err),
			Step: "artifact",
		}
	}

	return &BuildResult{
		OutputPath: output,
		Revision:   sourceRevision(b.cfg.SourceDir),
	}, nil
}

// sourceRevision returns the HEAD commit of the source checkout, or "" when
// the directory is not a git repository.
func sourceRevision(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
