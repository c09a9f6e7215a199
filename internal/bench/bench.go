package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/partbench/partbench/internal/qsort"
	"github.com/partbench/partbench/pkg/types"
)

// Column headers of the two tables.
var (
	PartitionHeader = []string{"partition", "array_size", "sequential_time", "parallel_time"}
	ThresholdHeader = []string{"array_size", "threshold", "time"}
)

// Params controls a benchmark run.
type Params struct {
	Schemes []qsort.Scheme

	// Sizes are the array lengths to time.
	Sizes []int

	// Threshold is the ParallelSort cutoff used by Partitions.
	Threshold int

	// Thresholds are the cutoffs swept by Thresholds.
	Thresholds []int

	// Workers bounds ParallelSort goroutines; <= 0 means unbounded.
	Workers int

	// MaxValue bounds generated elements to [0, MaxValue).
	MaxValue int

	Seed int64

	// Step, when non-nil, is called after every timed run.
	Step func()
}

// Steps returns how many timed runs Partitions and Thresholds perform
// together, i.e. how often Step is called.
func (p Params) Steps() int {
	return len(p.Schemes)*len(p.Sizes) + len(p.Sizes)*len(p.Thresholds)
}

func (p Params) step() {
	if p.Step != nil {
		p.Step()
	}
}

func (p Params) check() error {
	if p.MaxValue <= 0 {
		return fmt.Errorf("bench: max value must be positive, got %d", p.MaxValue)
	}
	for _, n := range p.Sizes {
		if n <= 0 {
			return fmt.Errorf("bench: array size must be positive, got %d", n)
		}
	}
	return nil
}

// timer measures fn. Tests swap it for a deterministic clock.
var timer = func(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

// Partitions times sequential against parallel sorting for every scheme and
// size, in that nesting order.
func Partitions(ctx context.Context, p Params) ([]types.BenchmarkRecord, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.Seed))
	out := make([]types.BenchmarkRecord, 0, len(p.Schemes)*len(p.Sizes))

	for _, s := range p.Schemes {
		for _, n := range p.Sizes {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			orig := generate(rng, n, p.MaxValue)

			seq := slices.Clone(orig)
			seqTime := measure(func() { qsort.Sort(seq, s) })
			if !qsort.IsSortedPermutation(orig, seq) {
				return out, fmt.Errorf("bench: %s sequential sort of %d elements is wrong", s.Name, n)
			}

			par := slices.Clone(orig)
			parTime := measure(func() { qsort.ParallelSort(par, s, p.Threshold, p.Workers) })
			if !qsort.IsSortedPermutation(orig, par) {
				return out, fmt.Errorf("bench: %s parallel sort of %d elements is wrong", s.Name, n)
			}

			rec := types.BenchmarkRecord{
				Partition:      s.Name,
				ArraySize:      n,
				SequentialTime: seqTime.Seconds(),
				ParallelTime:   parTime.Seconds(),
			}
			slog.Debug("bench: partition run",
				"partition", rec.Partition,
				"array_size", rec.ArraySize,
				"sequential", seqTime,
				"parallel", parTime,
			)
			out = append(out, rec)
			p.step()
		}
	}
	return out, nil
}

// Thresholds times ParallelSort with the Hoare scheme for every size and
// threshold, in that nesting order.
func Thresholds(ctx context.Context, p Params) ([]types.ThresholdSample, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(p.Seed))
	out := make([]types.ThresholdSample, 0, len(p.Sizes)*len(p.Thresholds))

	for _, n := range p.Sizes {
		orig := generate(rng, n, p.MaxValue)
		for _, th := range p.Thresholds {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			a := slices.Clone(orig)
			d := measure(func() { qsort.ParallelSort(a, qsort.Hoare, th, p.Workers) })
			if !qsort.IsSortedPermutation(orig, a) {
				return out, fmt.Errorf("bench: parallel sort of %d elements at threshold %d is wrong", n, th)
			}

			slog.Debug("bench: threshold run", "array_size", n, "threshold", th, "time", d)
			out = append(out, types.ThresholdSample{ArraySize: n, Threshold: th, Time: d.Seconds()})
			p.step()
		}
	}
	return out, nil
}

// WritePartitions writes recs as a CSV table with PartitionHeader.
func WritePartitions(w io.Writer, recs []types.BenchmarkRecord) error {
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, PartitionHeader)
	for _, r := range recs {
		rows = append(rows, r.Fields())
	}
	return writeAll(w, rows)
}

// WriteThresholds writes samples as a CSV table with ThresholdHeader.
func WriteThresholds(w io.Writer, samples []types.ThresholdSample) error {
	rows := make([][]string, 0, len(samples)+1)
	rows = append(rows, ThresholdHeader)
	for _, s := range samples {
		rows = append(rows, s.Fields())
	}
	return writeAll(w, rows)
}

// WriteFile creates path and fills it with write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("bench: close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func writeAll(w io.Writer, rows [][]string) error {
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("bench: write csv: %w", err)
	}
	return nil
}

// measure times fn, never reporting less than a nanosecond so the timing
// tables never hold a zero divisor.
func measure(fn func()) time.Duration {
	return max(timer(fn), time.Nanosecond)
}

func generate(rng *rand.Rand, n, maxValue int) []int {
	a := make([]int, n)
	for i := range a {
		a[i] = rng.Intn(maxValue)
	}
	return a
}
