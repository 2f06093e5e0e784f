package types

import "time"

// Round holds the parsed measurements of a single (backend, instance count)
// benchmark round.
type Round struct {
	Backend   string           `json:"backend"`
	Instances int              `json:"instances"`

	// Metrics maps a /proc status key (VmRSS, RssAnon, Threads, ...) to its
	// value in the round's final snapshot. Memory metrics are kilobytes,
	// Threads is a plain count.
	Metrics map[string]int64 `json:"metrics"`

	// Sampled holds the per-metric min/max/mean across all snapshots taken
	// during the round. With a single snapshot min, max and mean collapse
	// to the Metrics value.
	Sampled map[string]MetricRange `json:"sampled,omitempty"`

	// Admin holds the proxy admin /memory snapshot in bytes, when the
	// backend exposes an admin address.
	Admin map[string]uint64 `json:"admin,omitempty"`
}

// Metric returns the value for key and whether it was present in the round.
func (r Round) Metric(key string) (int64, bool) {
	v, ok := r.Metrics[key]
	return v, ok
}

// MetricRange aggregates one metric across the snapshots of a round.
type MetricRange struct {
	Min  int64   `json:"min"`
	Max  int64   `json:"max"`
	Mean float64 `json:"mean"`
}

// RoundFailure records a round that did not produce a measurement.
type RoundFailure struct {
	Backend   string `json:"backend"`
	Instances int    `json:"instances"`
	Reason    string `json:"reason"`
}

// RunResult is the persisted outcome of a full benchmark sweep.
type RunResult struct {
	ID         string         `json:"id"`
	Suite      string         `json:"suite"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Host       string         `json:"host"`
	Revision   string         `json:"revision,omitempty"`
	ReportPath string         `json:"report_path"`
	Rounds     []Round        `json:"rounds"`
	Failures   []RoundFailure `json:"failures,omitempty"`
}

// Succeeded reports whether every planned round produced a measurement.
func (r *RunResult) Succeeded() bool {
	return len(r.Failures) == 0 && len(r.Rounds) > 0
}

// BackendInfo describes an installed proxy binary as shown by the plan and
// build commands.
type BackendInfo struct {
	Name       string    `json:"name"`
	BinaryPath string    `json:"binary_path"`
	BuildFlag  string    `json:"build_flag"`
	Installed  bool      `json:"installed"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
	Revision   string    `json:"revision,omitempty"`
}
