package summary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/partbench/partbench/internal/speedup"
	"github.com/partbench/partbench/pkg/types"
)

// Header is the column row Write emits.
var Header = []string{"label", "count", "min", "median", "mean", "geomean", "max"}

// Summary describes the speedups of one label.
type Summary struct {
	Label  string
	Count  int
	Min    float64
	Median float64
	Mean   float64
	// GeoMean is NaN when any speedup is not positive.
	GeoMean float64
	Max     float64
}

// Fields renders s in Header order. An undefined GeoMean is left empty.
func (s Summary) Fields() []string {
	geo := ""
	if !math.IsNaN(s.GeoMean) {
		geo = speedup.FormatRatio(s.GeoMean)
	}
	return []string{
		s.Label,
		strconv.Itoa(s.Count),
		speedup.FormatRatio(s.Min),
		speedup.FormatRatio(s.Median),
		speedup.FormatRatio(s.Mean),
		geo,
		speedup.FormatRatio(s.Max),
	}
}

// Summarize groups recs by label, in first-appearance order.
func Summarize(recs []types.SpeedupRecord) ([]Summary, error) {
	var order []string
	groups := make(map[string][]float64)
	for _, r := range recs {
		if _, ok := groups[r.Label]; !ok {
			order = append(order, r.Label)
		}
		groups[r.Label] = append(groups[r.Label], r.Speedup)
	}

	out := make([]Summary, 0, len(order))
	for _, label := range order {
		s, err := summarize(label, groups[label])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func summarize(label string, data stats.Float64Data) (Summary, error) {
	s := Summary{Label: label, Count: len(data), GeoMean: math.NaN()}
	var err error
	if s.Min, err = stats.Min(data); err != nil {
		return Summary{}, fmt.Errorf("summary: %s: %w", label, err)
	}
	if s.Max, err = stats.Max(data); err != nil {
		return Summary{}, fmt.Errorf("summary: %s: %w", label, err)
	}
	if s.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, fmt.Errorf("summary: %s: %w", label, err)
	}
	if s.Median, err = stats.Median(data); err != nil {
		return Summary{}, fmt.Errorf("summary: %s: %w", label, err)
	}
	if s.Min > 0 {
		if s.GeoMean, err = stats.GeometricMean(data); err != nil {
			return Summary{}, fmt.Errorf("summary: %s: %w", label, err)
		}
	}
	return s, nil
}

// Read parses a speedup table: a header row, then label, size, speedup rows.
func Read(r io.Reader) ([]types.SpeedupRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("summary: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("summary: header has %d columns, want 3", len(header))
	}

	var recs []types.SpeedupRecord
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) < 3 {
			return nil, fmt.Errorf("summary: line %d: %d fields, want 3", line, len(fields))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("summary: line %d: %s %q: %w", line, header[2], fields[2], err)
		}
		recs = append(recs, types.SpeedupRecord{Label: fields[0], Size: fields[1], Speedup: v})
	}
}

// Write emits sums as CSV under Header.
func Write(w io.Writer, sums []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("summary: write: %w", err)
	}
	for _, s := range sums {
		if err := cw.Write(s.Fields()); err != nil {
			return fmt.Errorf("summary: write: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("summary: write: %w", err)
	}
	return nil
}
