package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/partbench/partbench/internal/bench"
	"github.com/partbench/partbench/internal/chart"
	"github.com/partbench/partbench/internal/config"
	"github.com/partbench/partbench/internal/exposition"
	"github.com/partbench/partbench/internal/series"
	"github.com/partbench/partbench/internal/speedup"
	"github.com/partbench/partbench/internal/summary"
	"github.com/partbench/partbench/pkg/types"
)

// Runner executes the partbench pipeline for one Config.
// It is not safe for concurrent use.
type Runner struct {
	cfg      *config.Config
	progress func(total int) func()
}

// Option configures a Runner.
type Option func(*Runner)

// WithProgress reports benchmark progress. start is called once per Bench
// with the number of timed runs and returns the function called after each.
func WithProgress(start func(total int) func()) Option {
	return func(r *Runner) { r.progress = start }
}

// New returns a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the active configuration.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// Bench times the quicksort schemes and writes both timing tables.
func (r *Runner) Bench(ctx context.Context) error {
	b := r.cfg.Bench
	schemes, err := b.SchemeList()
	if err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	p := bench.Params{
		Schemes:    schemes,
		Sizes:      b.Sizes,
		Threshold:  b.Threshold,
		Thresholds: b.Thresholds,
		Workers:    b.Workers,
		MaxValue:   b.MaxValue,
		Seed:       b.Seed,
	}
	if r.progress != nil {
		p.Step = r.progress(p.Steps())
	}

	recs, err := bench.Partitions(ctx, p)
	if err != nil {
		return fmt.Errorf("runner: partition benchmark: %w", err)
	}
	if err := bench.WriteFile(b.PartitionOutput, func(w io.Writer) error {
		return bench.WritePartitions(w, recs)
	}); err != nil {
		return err
	}
	slog.Info("runner: wrote partition timings", "path", b.PartitionOutput, "rows", len(recs))

	samples, err := bench.Thresholds(ctx, p)
	if err != nil {
		return fmt.Errorf("runner: threshold benchmark: %w", err)
	}
	if err := bench.WriteFile(b.ThresholdOutput, func(w io.Writer) error {
		return bench.WriteThresholds(w, samples)
	}); err != nil {
		return err
	}
	slog.Info("runner: wrote threshold timings", "path", b.ThresholdOutput, "rows", len(samples))
	return nil
}

// Derive turns the configured timing table into the speedup table and, when
// speedup.exposition is set, writes the same values as a gauge family.
func (r *Runner) Derive() (*speedup.Result, error) {
	sp := r.cfg.Speedup
	var recs []types.SpeedupRecord
	res, err := speedup.DeriveFile(sp.Input, sp.Output, func(rec types.SpeedupRecord) {
		recs = append(recs, rec)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("runner: derived speedups", "input", sp.Input, "output", sp.Output, "rows", res.Rows)
	logSummaries(recs)
	return res, r.export(res, recs)
}

// DeriveStream is Derive over caller-supplied streams. The exposition file is
// still written when configured.
func (r *Runner) DeriveStream(in io.Reader, out io.Writer) (*speedup.Result, error) {
	var recs []types.SpeedupRecord
	res, err := speedup.Derive(in, out, func(rec types.SpeedupRecord) {
		recs = append(recs, rec)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("runner: derived speedups", "rows", res.Rows)
	logSummaries(recs)
	return res, r.export(res, recs)
}

func (r *Runner) export(res *speedup.Result, recs []types.SpeedupRecord) error {
	sp := r.cfg.Speedup
	if sp.Exposition == "" {
		return nil
	}
	mf, err := exposition.Family(sp.MetricName, "", res.Header, recs)
	if err != nil {
		return err
	}
	if err := exposition.WriteFile(sp.Exposition, mf); err != nil {
		return err
	}
	slog.Info("runner: wrote exposition", "path", sp.Exposition, "metric", sp.MetricName, "samples", len(recs))
	return nil
}

// Summarize reads the speedup table at speedup.output and writes one
// summary row per label to w.
func (r *Runner) Summarize(w io.Writer) error {
	f, err := os.Open(r.cfg.Speedup.Output)
	if err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	defer f.Close()
	return SummarizeStream(f, w)
}

// SummarizeStream is Summarize over caller-supplied streams.
func SummarizeStream(in io.Reader, w io.Writer) error {
	recs, err := summary.Read(in)
	if err != nil {
		return err
	}
	sums, err := summary.Summarize(recs)
	if err != nil {
		return err
	}
	return summary.Write(w, sums)
}

func logSummaries(recs []types.SpeedupRecord) {
	sums, err := summary.Summarize(recs)
	if err != nil {
		slog.Warn("runner: cannot summarize speedups", "err", err)
		return
	}
	for _, s := range sums {
		slog.Info("runner: speedup summary",
			"label", s.Label,
			"count", s.Count,
			"min", s.Min,
			"median", s.Median,
			"max", s.Max,
		)
	}
}

// Plot renders the named charts, or every configured chart when names is
// empty. In the latter case charts whose input file does not exist yet are
// skipped with a warning.
func (r *Runner) Plot(names ...string) error {
	charts := r.cfg.Charts
	all := len(names) == 0
	if !all {
		charts = make([]config.ChartConfig, 0, len(names))
		for _, name := range names {
			ch, ok := r.cfg.Chart(name)
			if !ok {
				return fmt.Errorf("runner: unknown chart %q", name)
			}
			charts = append(charts, ch)
		}
	}

	for _, ch := range charts {
		if all && !isBuiltin(ch.Input) {
			if _, err := os.Stat(ch.Input); errors.Is(err, fs.ErrNotExist) {
				slog.Warn("runner: chart input missing, skipping", "chart", ch.Name, "input", ch.Input)
				continue
			}
		}
		if err := plotOne(ch); err != nil {
			return err
		}
	}
	return nil
}

func plotOne(ch config.ChartConfig) error {
	ds, err := series.ReadFile(ch.Input, ch.Query())
	if err != nil {
		return fmt.Errorf("runner: chart %q: %w", ch.Name, err)
	}
	if ds.Len() == 0 {
		slog.Warn("runner: chart has no points, skipping", "chart", ch.Name, "input", ch.Input)
		return nil
	}
	if err := chart.Save(ch.Output, ds, ch.Options()); err != nil {
		return fmt.Errorf("runner: chart %q: %w", ch.Name, err)
	}
	slog.Info("runner: rendered chart", "chart", ch.Name, "output", ch.Output, "series", len(ds.Series))
	return nil
}

// Run executes the whole pipeline: bench (when enabled), derive, then plot
// every chart.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Bench.Enabled {
		if err := r.Bench(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.Derive(); err != nil {
		return err
	}
	return r.Plot()
}

func isBuiltin(input string) bool {
	return strings.HasPrefix(input, series.BuiltinPrefix)
}
