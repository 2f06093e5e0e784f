package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/proxystack/wasmbench/pkg/bench/procfs"
	"github.com/proxystack/wasmbench/pkg/bench/stats"
	"github.com/proxystack/wasmbench/pkg/types"
)

// SummaryMetrics are the status fields tabulated per backend, in row order.
var SummaryMetrics = []string{
	procfs.KeyVmSize,
	procfs.KeyVmRSS,
	procfs.KeyRssAnon,
	procfs.KeyRssFile,
	procfs.KeyThreads,
}

// Summary renders the markdown summary table for a set of parsed rounds.
// Backends appear in backendOrder; backends present in the rounds but not in
// the order list are appended in first-seen order. The column layout adapts
// to the instance counts actually swept.
func Summary(rounds []types.Round, backendOrder []string) string {
	counts := sweepCounts(rounds)
	order := mergeOrder(rounds, backendOrder)

	byBackend := make(map[string][]types.Round)
	for _, r := range rounds {
		byBackend[r.Backend] = append(byBackend[r.Backend], r)
	}

	var b strings.Builder
	b.WriteString("# Summary\n\n")
	b.WriteString("Collect from */proc/[pid]/status*\n\n")

	// Header: one value column per swept count, one delta column per gap.
	b.WriteString("| wasm vm | metric |")
	for _, c := range counts {
		if c == 1 {
			b.WriteString(" 1 vm |")
		} else {
			fmt.Fprintf(&b, " %d vms |", c)
		}
	}
	for i := 1; i < len(counts); i++ {
		fmt.Fprintf(&b, " delta_%d |", i)
	}
	b.WriteString(" delta_avg |\n")

	b.WriteString("| -- | -- |")
	for range counts {
		b.WriteString(" -- |")
	}
	for i := 1; i < len(counts); i++ {
		b.WriteString(" -- |")
	}
	b.WriteString(" -- |\n")

	for _, backend := range order {
		backendRounds := byBackend[backend]
		if len(backendRounds) == 0 {
			continue
		}
		sort.Slice(backendRounds, func(i, j int) bool {
			return backendRounds[i].Instances < backendRounds[j].Instances
		})

		for _, metric := range SummaryMetrics {
			b.WriteString(summaryRow(backend, metric, backendRounds, counts))
		}
	}

	return b.String()
}

// summaryRow renders one |backend|metric|values...|deltas...|avg| line.
func summaryRow(backend, metric string, backendRounds []types.Round, counts []int) string {
	byCount := make(map[int]types.Round, len(backendRounds))
	for _, r := range backendRounds {
		byCount[r.Instances] = r
	}

	var series []int64
	cells := make([]string, 0, len(counts))
	for _, c := range counts {
		r, ok := byCount[c]
		if !ok {
			cells = append(cells, "")
			continue
		}
		v, ok := r.Metric(metric)
		if !ok {
			cells = append(cells, "")
			continue
		}
		series = append(series, v)
		cells = append(cells, strconv.FormatInt(v, 10))
	}

	deltas, mean := stats.Deltas(series)
	for i := 1; i < len(counts); i++ {
		if i <= len(deltas) {
			cells = append(cells, strconv.FormatInt(deltas[i-1], 10))
		} else {
			cells = append(cells, "")
		}
	}
	cells = append(cells, strconv.FormatFloat(mean, 'f', 1, 64))

	return fmt.Sprintf("|%s|%s|%s|\n", backend, metric, strings.Join(cells, "|"))
}

// sweepCounts returns the sorted distinct instance counts across all rounds.
func sweepCounts(rounds []types.Round) []int {
	seen := make(map[int]bool)
	var counts []int
	for _, r := range rounds {
		if !seen[r.Instances] {
			seen[r.Instances] = true
			counts = append(counts, r.Instances)
		}
	}
	sort.Ints(counts)
	return counts
}

// mergeOrder keeps the declared backend order and appends stragglers.
func mergeOrder(rounds []types.Round, declared []string) []string {
	seen := make(map[string]bool, len(declared))
	order := make([]string, 0, len(declared))
	for _, name := range declared {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, r := range rounds {
		if !seen[r.Backend] {
			seen[r.Backend] = true
			order = append(order, r.Backend)
		}
	}
	return order
}
