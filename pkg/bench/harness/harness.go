// Package harness sweeps the (backend, instance count) matrix and collects
// proxy memory measurements into a report.
package harness

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/proxystack/wasmbench/pkg/bench/config"
	"github.com/proxystack/wasmbench/pkg/bench/errors"
	"github.com/proxystack/wasmbench/pkg/bench/logging"
	"github.com/proxystack/wasmbench/pkg/bench/procfs"
	"github.com/proxystack/wasmbench/pkg/bench/proxy"
	"github.com/proxystack/wasmbench/pkg/bench/report"
	"github.com/proxystack/wasmbench/pkg/bench/stats"
	"github.com/proxystack/wasmbench/pkg/bench/store"
	"github.com/proxystack/wasmbench/pkg/bench/utils"
	"github.com/proxystack/wasmbench/pkg/builders"
	"github.com/proxystack/wasmbench/pkg/manifest"
	"github.com/proxystack/wasmbench/pkg/types"
)

// Harness runs a full benchmark sweep.
type Harness struct {
	cfg     *config.Config
	suite   *manifest.SuiteManifest
	history *store.Store // nil disables history
	logger  logging.Logger
}

// New creates a Harness. history may be nil to skip run persistence.
func New(cfg *config.Config, suite *manifest.SuiteManifest, history *store.Store, logger logging.Logger) *Harness {
	return &Harness{
		cfg:     cfg,
		suite:   suite,
		history: history,
		logger:  logger,
	}
}

// measurement is a completed round before it is folded into the run result.
type measurement struct {
	round types.Round
	raw   string
}

// Run executes every round of the sweep, writes the report and summary, and
// persists the run. A failed round is recorded and the sweep continues, so
// one broken backend cannot void an afternoon of measurements.
func (h *Harness) Run(ctx context.Context) (*types.RunResult, error) {
	startedAt := time.Now()
	reportPath := report.DefaultPath(h.cfg.Report.Dir, startedAt)
	writer := report.NewWriter(reportPath)

	hostname, _ := os.Hostname()
	result := &types.RunResult{
		ID:         report.Timestamp(startedAt),
		Suite:      h.suite.Suite.Name,
		StartedAt:  startedAt.UTC(),
		Host:       hostname,
		Revision:   h.installedRevision(),
		ReportPath: reportPath,
	}

	h.logger.Printf("Start recording...")
	h.logger.Printf("report: %s", reportPath)

	for _, backend := range h.suite.Suite.Backends {
		for _, instances := range h.suite.Suite.InstanceCounts {
			if ctx.Err() != nil {
				return result, errors.Wrap(errors.DomainHarness, errors.CodeRunCancelled,
					"sweep interrupted", ctx.Err())
			}

			key := report.RoundKey(backend.Name, instances)
			h.logger.Printf("round %s", key)

			m, err := h.runRound(ctx, backend, instances)
			if err != nil {
				h.logger.Errorf("round %s failed: %v", key, err)
				result.Failures = append(result.Failures, types.RoundFailure{
					Backend:   backend.Name,
					Instances: instances,
					Reason:    err.Error(),
				})
				continue
			}

			if err := writer.WriteBlock(key, m.raw); err != nil {
				return result, err
			}
			result.Rounds = append(result.Rounds, m.round)
		}
	}

	h.logger.Printf("Start reporting...")
	if len(result.Rounds) > 0 {
		summary := report.Summary(result.Rounds, h.suite.Suite.BackendNames())
		if err := writer.WriteSummary(summary); err != nil {
			return result, err
		}
	}

	result.FinishedAt = time.Now().UTC()

	if h.history != nil {
		if err := h.history.Save(result); err != nil {
			// History is a convenience; the report on disk is the
			// product of record.
			h.logger.Errorf("failed to save run to history: %v", err)
		}
	}

	if len(result.Rounds) == 0 {
		return result, errors.New(errors.DomainHarness, errors.CodeRoundFailed,
			"every round of the sweep failed")
	}
	return result, nil
}

// runRound measures one (backend, instance count) pair under the round
// timeout.
func (h *Harness) runRound(ctx context.Context, backend manifest.Backend, instances int) (*measurement, error) {
	roundCtx := ctx
	if h.cfg.Harness.RoundTimeout > 0 {
		var cancel context.CancelFunc
		roundCtx, cancel = context.WithTimeout(ctx, h.cfg.Harness.RoundTimeout)
		defer cancel()
	}

	return utils.ExecuteWithContext(roundCtx, func() (*measurement, error) {
		return h.measure(roundCtx, backend, instances)
	})
}

func (h *Harness) measure(ctx context.Context, backend manifest.Backend, instances int) (*measurement, error) {
	spec := proxy.Spec{
		Binary:       backend.BinaryPath(),
		Config:       h.suite.Suite.ConfigFor(backend, instances),
		Concurrency:  h.cfg.Harness.Concurrency,
		ReadyMarker:  h.cfg.Harness.ReadyMarker,
		StartTimeout: h.cfg.Harness.StartTimeout,
	}

	p, err := proxy.Start(ctx, spec, h.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = p.Stop()
		// Give the kernel a moment to tear the process down before the
		// next round starts a fresh proxy.
		_ = sleepCtx(context.Background(), h.cfg.Harness.SettleDelay)
	}()

	h.logger.Printf("proxy pid is %d", p.PID())

	if err := sleepCtx(ctx, h.cfg.Harness.SettleDelay); err != nil {
		return nil, err
	}

	snapshots, err := h.sample(ctx, p.PID())
	if err != nil {
		return nil, err
	}
	last := snapshots[len(snapshots)-1]

	m := &measurement{
		round: types.Round{
			Backend:   backend.Name,
			Instances: instances,
			Metrics:   last.Fields,
			Sampled:   aggregateSnapshots(snapshots),
		},
		raw: last.Raw,
	}

	if backend.AdminAddress != "" {
		stats, err := proxy.NewAdminClient(backend.AdminAddress).Memory(ctx)
		if err != nil {
			// Admin sampling is best-effort; /proc is the primary source.
			h.logger.Errorf("admin sampling for %s failed: %v", backend.Name, err)
		} else {
			m.round.Admin = stats.Fields()
		}
	}

	return m, nil
}

// sample reads /proc status h.cfg.Harness.Samples times. The last snapshot
// is what lands in the report; the earlier ones let a slow-settling proxy
// finish growing and feed the per-metric ranges.
func (h *Harness) sample(ctx context.Context, pid int) ([]*procfs.Status, error) {
	samples := h.cfg.Harness.Samples
	if samples < 1 {
		samples = 1
	}

	snapshots := make([]*procfs.Status, 0, samples)
	for i := 0; i < samples; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, h.cfg.Harness.SampleInterval); err != nil {
				return nil, err
			}
		}
		s, err := procfs.ReadStatus(pid)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
		h.logger.Debugf("sample %d/%d: VmRSS %s", i+1, samples, kbField(s, procfs.KeyVmRSS))
	}
	return snapshots, nil
}

// aggregateSnapshots folds a round's snapshots into per-metric ranges. Keys
// follow the final snapshot; a metric missing from an intermediate snapshot
// aggregates over the snapshots that carried it.
func aggregateSnapshots(snapshots []*procfs.Status) map[string]types.MetricRange {
	last := snapshots[len(snapshots)-1]
	sampled := make(map[string]types.MetricRange, len(last.Fields))
	for key := range last.Fields {
		series := make([]int64, 0, len(snapshots))
		for _, s := range snapshots {
			if v, ok := s.Fields[key]; ok {
				series = append(series, v)
			}
		}
		sampled[key] = types.MetricRange{
			Min:  stats.Min(series),
			Max:  stats.Max(series),
			Mean: stats.Mean(series),
		}
	}
	return sampled
}

// installedRevision returns the source revision of the first backend with a
// provenance record. Mixed-revision sweeps are legal but worth noticing.
func (h *Harness) installedRevision() string {
	revision := ""
	for _, backend := range h.suite.Suite.Backends {
		info, ok, err := builders.ReadInstallInfo(backend)
		if err != nil || !ok || info.Revision == "" {
			continue
		}
		if revision == "" {
			revision = info.Revision
		} else if revision != info.Revision {
			h.logger.Errorf("backend %s was built from %s, expected %s",
				backend.Name, info.Revision, revision)
		}
	}
	return revision
}

func kbField(s *procfs.Status, key string) string {
	v, err := s.Metric(key)
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%d kB", v)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
