package procfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
)

// FindPID walks /proc looking for a process whose command line starts with
// binaryPath. It is the fallback for proxies not started by the harness
// itself, e.g. a hot-restart child or an externally launched instance.
// Symlinks in binaryPath are resolved before matching, since the kernel
// records the resolved executable path.
func FindPID(binaryPath string) (int, error) {
	resolved, err := filepath.EvalSymlinks(binaryPath)
	if err == nil {
		binaryPath = resolved
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, errors.Wrap(errors.DomainProcfs, errors.CodeStatusUnreadable,
			"cannot list /proc", err)
	}

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		cmdline, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
		if err != nil {
			// Process exited between ReadDir and ReadFile.
			continue
		}

		// cmdline is NUL-separated; argv[0] is the first field.
		argv0, _, _ := strings.Cut(string(cmdline), "\x00")
		if strings.HasPrefix(argv0, binaryPath) {
			return pid, nil
		}
	}

	return 0, errors.New(errors.DomainProxy, errors.CodePidNotFound,
		fmt.Sprintf("no process found for binary %s", binaryPath))
}

// ReadBinaryStatus snapshots the status of a running process found by its
// binary path. This is the attach path for proxies the harness did not start.
func ReadBinaryStatus(binaryPath string) (*Status, error) {
	pid, err := FindPID(binaryPath)
	if err != nil {
		return nil, err
	}
	return ReadStatus(pid)
}
