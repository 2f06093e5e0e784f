// Package proxy starts and stops the proxy binaries under measurement.
package proxy

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
)

// DefaultReadyMarker is the log line the proxy emits once its dispatch loop
// is up. Measuring before this point reads a half-initialized process.
const DefaultReadyMarker = "starting main dispatch loop"

// Spec describes one proxy launch.
type Spec struct {
	// Binary is the proxy executable; symlinks are resolved before exec.
	Binary string

	// Config is the bootstrap config passed via -c.
	Config string

	// Concurrency is the proxy worker thread count (--concurrency).
	Concurrency int

	// ReadyMarker overrides DefaultReadyMarker when non-empty.
	ReadyMarker string

	// StartTimeout bounds the wait for the ready marker.
	StartTimeout time.Duration
}

// Process is a running proxy.
type Process struct {
	cmd    *exec.Cmd
	binary string
	logger logging.Logger

	stopOnce sync.Once
	stopErr  error
}

// Start launches the proxy and blocks until it logs its ready marker or the
// start timeout passes. On a timeout the spawned process is killed before
// returning.
func Start(ctx context.Context, spec Spec, logger logging.Logger) (*Process, error) {
	binary := spec.Binary
	if resolved, err := filepath.EvalSymlinks(binary); err == nil {
		binary = resolved
	}

	marker := spec.ReadyMarker
	if marker == "" {
		marker = DefaultReadyMarker
	}
	timeout := spec.StartTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	cmd := exec.Command(binary, "-c", spec.Config, "--concurrency", strconv.Itoa(spec.Concurrency))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(errors.DomainProxy, errors.CodeStartFailed,
			"failed to create stdout pipe", err)
	}
	// The proxy logs to stderr by default; merge so the marker is seen
	// either way.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.DomainProxy, errors.CodeStartFailed,
			fmt.Sprintf("failed to start %s", binary), err)
	}

	p := &Process{cmd: cmd, binary: binary, logger: logger}

	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	readyCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, marker) {
				logger.Debugf("proxy ready: %s", strings.TrimSpace(line))
				readyCh <- nil
				// Keep draining so the proxy never blocks on a full
				// pipe while being sampled.
				for scanner.Scan() {
				}
				return
			}
		}
		readyCh <- errors.New(errors.DomainProxy, errors.CodeNotReady,
			"proxy output ended before the ready marker")
	}()

	select {
	case err := <-readyCh:
		if err != nil {
			_ = p.Stop()
			return nil, err
		}
		return p, nil

	case <-readyCtx.Done():
		_ = p.Stop()
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.DomainProxy, errors.CodeStartFailed,
				"proxy start cancelled", ctx.Err())
		}
		return nil, errors.New(errors.DomainProxy, errors.CodeNotReady,
			fmt.Sprintf("proxy did not log %q within %s", marker, timeout))
	}
}

// PID returns the proxy's process id.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Binary returns the resolved binary path the proxy was started from.
func (p *Process) Binary() string {
	return p.binary
}

// Stop kills the proxy and reaps it. Safe to call more than once.
func (p *Process) Stop() error {
	p.stopOnce.Do(func() {
		if err := p.cmd.Process.Kill(); err != nil {
			p.stopErr = errors.Wrap(errors.DomainProxy, errors.CodeAlreadyGone,
				"failed to kill proxy", err)
		}
		// Wait regardless, to reap the child. The error after a kill is
		// the expected "signal: killed".
		_ = p.cmd.Wait()
	})
	return p.stopErr
}
