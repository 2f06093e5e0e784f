package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
	"github.com/proxystack/wasmbench/pkg/bench/procfs"
	"github.com/proxystack/wasmbench/pkg/types"
)

// roundHeading matches measurement block headings like "## wamr-1-1-0_2_vm".
// Backend names may themselves contain underscores; the trailing
// "_<count>_vm" is authoritative.
var roundHeading = regexp.MustCompile(`^## (\S+)_(\d+)_vm\s*$`)

// Parse reads a report file and returns its measurement rounds.
func Parse(path string) ([]types.Round, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.DomainReport, errors.CodeReportNotFound,
				fmt.Sprintf("report %s does not exist", path))
		}
		return nil, errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
			"failed to open report", err)
	}
	defer f.Close()

	return ParseReader(f)
}

// ParseReader parses report content from r. Lines outside measurement
// blocks, including an appended summary section, are ignored.
func ParseReader(r io.Reader) ([]types.Round, error) {
	var rounds []types.Round
	var current *types.Round

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "## "):
			m := roundHeading.FindStringSubmatch(line)
			if m == nil {
				// A prose heading, not a measurement block.
				continue
			}
			instances, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
					fmt.Sprintf("bad instance count in heading %q", line), err)
			}
			current = &types.Round{
				Backend:   m[1],
				Instances: instances,
				Metrics:   make(map[string]int64),
			}

		case strings.HasPrefix(line, "--"):
			// A "--" line terminates the open block.
			if current != nil {
				rounds = append(rounds, *current)
				current = nil
			}

		default:
			if current == nil {
				continue
			}
			if !strings.HasPrefix(line, "Vm") && !strings.HasPrefix(line, "Rss") &&
				!strings.HasPrefix(line, "Threads") {
				continue
			}
			key, value, err := procfs.ParseMetricLine(line)
			if err != nil {
				return nil, errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
					fmt.Sprintf("bad metric line in block %s",
						RoundKey(current.Backend, current.Instances)), err)
			}
			current.Metrics[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
			"error reading report", err)
	}

	if len(rounds) == 0 {
		return nil, errors.New(errors.DomainReport, errors.CodeEmptyReport,
			"report contains no measurement blocks")
	}

	return rounds, nil
}
