// Package procfs reads process memory accounting from the Linux proc
// filesystem.
//
// See https://manpages.ubuntu.com/manpages/focal/en/man5/proc.5.html for the
// field semantics.
package procfs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
)

// Well-known status keys tracked by the benchmark summary.
const (
	KeyVmSize   = "VmSize"
	KeyVmRSS    = "VmRSS"
	KeyRssAnon  = "RssAnon"
	KeyRssFile  = "RssFile"
	KeyRssShmem = "RssShmem"
	KeyThreads  = "Threads"
)

// metricLine matches the memory lines of /proc/[pid]/status, e.g.
// "VmRSS:     12345 kB". Threads has no unit suffix.
var metricLine = regexp.MustCompile(`^(Vm\w+|Rss\w+|Threads):\s+(\d+)(?:\s+kB)?$`)

// Status is a snapshot of the Vm*, Rss* and Threads lines of a process
// status file.
type Status struct {
	PID int

	// Raw preserves the matched lines verbatim, in file order. Report
	// blocks embed this so reports stay byte-compatible across harness
	// versions.
	Raw string

	// Fields maps status keys to values. Memory values are kilobytes,
	// Threads is a count.
	Fields map[string]int64
}

// Metric returns the value for key, or an error naming the missing field.
func (s *Status) Metric(key string) (int64, error) {
	v, ok := s.Fields[key]
	if !ok {
		return 0, errors.New(errors.DomainProcfs, errors.CodeFieldMissing,
			fmt.Sprintf("status field %q not present for pid %d", key, s.PID))
	}
	return v, nil
}

// VmRSS returns the resident set size in kilobytes.
func (s *Status) VmRSS() (int64, error) {
	return s.Metric(KeyVmRSS)
}

// Threads returns the thread count.
func (s *Status) Threads() (int64, error) {
	return s.Metric(KeyThreads)
}

// ReadStatus reads and parses /proc/<pid>/status.
func ReadStatus(pid int) (*Status, error) {
	path := fmt.Sprintf("/proc/%d/status", pid)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.DomainProcfs, errors.CodeStatusUnreadable,
			fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	status, err := parseStatus(f)
	if err != nil {
		return nil, err
	}
	status.PID = pid
	return status, nil
}

// parseStatus extracts the Vm*, Rss* and Threads lines from a status file.
func parseStatus(r io.Reader) (*Status, error) {
	status := &Status{Fields: make(map[string]int64)}

	var raw strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Vm") && !strings.HasPrefix(line, "Rss") &&
			!strings.HasPrefix(line, "Threads") {
			continue
		}

		raw.WriteString(line)
		raw.WriteString("\n")

		key, value, err := ParseMetricLine(line)
		if err != nil {
			return nil, err
		}
		status.Fields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.DomainProcfs, errors.CodeStatusUnreadable,
			"error reading status file", err)
	}

	status.Raw = raw.String()
	return status, nil
}

// ParseMetricLine parses a single "Key:   123 kB" or "Threads:  4" line.
func ParseMetricLine(line string) (string, int64, error) {
	m := metricLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", 0, errors.New(errors.DomainProcfs, errors.CodeMalformedLine,
			fmt.Sprintf("malformed status line %q", line))
	}

	value, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return "", 0, errors.Wrap(errors.DomainProcfs, errors.CodeMalformedLine,
			fmt.Sprintf("bad value in status line %q", line), err)
	}

	return m[1], value, nil
}
