package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxystack/wasmbench/pkg/types"
)

const rawBlock = `VmPeak:	 2265496 kB
VmSize:	 2265496 kB
VmRSS:	   48356 kB
RssAnon:	   23540 kB
RssFile:	   24816 kB
RssShmem:	       0 kB
Threads:	9
`

func TestWriteAndParseRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "report.md")

	w := NewWriter(path)
	require.NoError(t, w.WriteBlock(RoundKey("v8", 1), rawBlock))
	require.NoError(t, w.WriteBlock(RoundKey("wamr-1-1-0", 2), rawBlock))

	rounds, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	assert.Equal(t, "v8", rounds[0].Backend)
	assert.Equal(t, 1, rounds[0].Instances)
	assert.Equal(t, int64(48356), rounds[0].Metrics["VmRSS"])
	assert.Equal(t, int64(9), rounds[0].Metrics["Threads"])

	// Backend names with embedded digits and dashes keep their identity.
	assert.Equal(t, "wamr-1-1-0", rounds[1].Backend)
	assert.Equal(t, 2, rounds[1].Instances)
}

// Reports written by the original Python harness use the exact same block
// layout; a hand-built one must parse.
func TestParseLegacyReport(t *testing.T) {
	legacy := "## wasmtime_1_vm" + "\n" +
		"```\n" + rawBlock + "```\n" + "---" + "\n" +
		"## wasmtime_2_vm" + "\n" +
		"```\n" +
		"VmSize:	 2300000 kB\nVmRSS:	   52000 kB\nThreads:	11\n" +
		"```\n" + "---" + "\n"

	rounds, err := ParseReader(strings.NewReader(legacy))
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, int64(52000), rounds[1].Metrics["VmRSS"])
	assert.Equal(t, 2, rounds[1].Instances)
}

func TestParseIgnoresAppendedSummary(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "report.md")

	w := NewWriter(path)
	require.NoError(t, w.WriteBlock(RoundKey("v8", 1), rawBlock))
	require.NoError(t, w.WriteSummary("# Summary\n\n| wasm vm | metric |\n| -- | -- |\n|v8|VmRSS|48356|\n"))

	rounds, err := Parse(path)
	require.NoError(t, err)
	assert.Len(t, rounds, 1)
}

func TestParseEmptyReport(t *testing.T) {
	_, err := ParseReader(strings.NewReader("# Notes\n\nnothing measured yet\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no measurement blocks")
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestSummaryTable(t *testing.T) {
	rounds := []types.Round{
		{Backend: "v8", Instances: 1, Metrics: map[string]int64{
			"VmSize": 2265496, "VmRSS": 48356, "RssAnon": 23540, "RssFile": 24816, "Threads": 9,
		}},
		{Backend: "v8", Instances: 2, Metrics: map[string]int64{
			"VmSize": 2270000, "VmRSS": 53120, "RssAnon": 27000, "RssFile": 24900, "Threads": 9,
		}},
		{Backend: "v8", Instances: 3, Metrics: map[string]int64{
			"VmSize": 2274504, "VmRSS": 57980, "RssAnon": 30500, "RssFile": 25000, "Threads": 9,
		}},
		{Backend: "wamr", Instances: 1, Metrics: map[string]int64{
			"VmSize": 1800000, "VmRSS": 30000, "RssAnon": 15000, "RssFile": 14000, "Threads": 9,
		}},
		{Backend: "wamr", Instances: 2, Metrics: map[string]int64{
			"VmSize": 1801000, "VmRSS": 31000, "RssAnon": 15500, "RssFile": 14100, "Threads": 9,
		}},
		{Backend: "wamr", Instances: 3, Metrics: map[string]int64{
			"VmSize": 1802000, "VmRSS": 32000, "RssAnon": 16000, "RssFile": 14200, "Threads": 9,
		}},
	}

	summary := Summary(rounds, []string{"v8", "wamr"})

	assert.Contains(t, summary, "| wasm vm | metric | 1 vm | 2 vms | 3 vms | delta_1 | delta_2 | delta_avg |")
	assert.Contains(t, summary, "|v8|VmRSS|48356|53120|57980|4764|4860|4812.0|")
	assert.Contains(t, summary, "|wamr|VmSize|1800000|1801000|1802000|1000|1000|1000.0|")
	assert.Contains(t, summary, "|v8|Threads|9|9|9|0|0|0.0|")

	// Declaration order wins over alphabetical order.
	assert.Less(t, strings.Index(summary, "|v8|"), strings.Index(summary, "|wamr|"))
}

func TestSummarySingleRound(t *testing.T) {
	rounds := []types.Round{
		{Backend: "v8", Instances: 1, Metrics: map[string]int64{"VmRSS": 48356}},
	}

	// A one-round sweep has no delta columns and must not divide by zero.
	summary := Summary(rounds, nil)
	assert.Contains(t, summary, "| wasm vm | metric | 1 vm | delta_avg |")
	assert.Contains(t, summary, "|v8|VmRSS|48356|0.0|")
}

func TestDefaultPath(t *testing.T) {
	ts := time.Date(2022, 5, 18, 9, 30, 0, 0, time.UTC)
	path := DefaultPath("/tmp/reports", ts)
	assert.Equal(t, "/tmp/reports/report_2022-05-18T09-30-00.md", path)
}

func TestWriteBlockAddsTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	w := NewWriter(path)
	require.NoError(t, w.WriteBlock("v8_1_vm", "VmRSS:\t 100 kB"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "VmRSS:\t 100 kB\n```\n")
}
