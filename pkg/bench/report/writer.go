// Package report writes, parses and summarizes benchmark reports.
//
// A report is a markdown file of measurement blocks:
//
//	## <backend>_<instances>_vm
//	```
//	VmRSS:     48356 kB
//	...
//	```
//	---
//
// followed, once a sweep is complete, by a summary table. The block format
// predates this harness; existing reports keep parsing.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/proxystack/wasmbench/pkg/bench/errors"
)

// timestampLayout names report files down to the second, e.g.
// report_2022-05-18T09-30-00.md.
const timestampLayout = "2006-01-02T15-04-05"

// Timestamp renders t in the report naming format. It doubles as the run ID
// in the history store.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// RoundKey builds the block heading key for a round.
func RoundKey(backend string, instances int) string {
	return fmt.Sprintf("%s_%d_vm", backend, instances)
}

// DefaultPath returns the timestamped report path inside dir.
func DefaultPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("report_%s.md", Timestamp(t)))
}

// Writer appends measurement blocks to a report file.
type Writer struct {
	path string
}

// NewWriter creates a Writer for path. The file is created on first write.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the report file path.
func (w *Writer) Path() string {
	return w.path
}

// WriteBlock appends one fenced measurement block under the given key.
func (w *Writer) WriteBlock(key, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(key)
	b.WriteString("\n")
	b.WriteString("```\n")
	b.WriteString(content)
	b.WriteString("```\n")
	b.WriteString("---\n")

	return w.append(b.String())
}

// WriteSummary appends the rendered summary section to the report.
func (w *Writer) WriteSummary(summary string) error {
	return w.append("\n" + summary)
}

func (w *Writer) append(text string) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
				"failed to create report directory", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
			"failed to open report file", err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return errors.Wrap(errors.DomainReport, errors.CodeMalformedReport,
			"failed to append to report file", err)
	}
	return nil
}
