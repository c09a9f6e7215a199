package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/partbench/partbench/internal/series"
)

// Default canvas size in inches.
const (
	DefaultWidth  = 10.0
	DefaultHeight = 6.0
)

// Formats lists the output formats Render accepts.
var Formats = []string{"png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff"}

// Options controls the look of a chart.
type Options struct {
	Title  string
	XLabel string
	YLabel string

	// LabelFormat is a fmt pattern with one %s verb applied to each series
	// name to build its legend entry. Empty means the bare name.
	LabelFormat string

	// Width and Height are in inches; zero picks the defaults.
	Width  float64
	Height float64

	// LogY puts the y axis on a log scale. Every y value must be positive.
	LogY bool

	// XTicks places one tick at every distinct x value in the dataset.
	XTicks bool
}

// Render draws ds and writes it to w in the given format.
func Render(w io.Writer, ds *series.Dataset, opts Options, format string) error {
	p, err := build(ds, opts)
	if err != nil {
		return err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	wt, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write %s: %w", format, err)
	}
	return nil
}

// Save renders ds to path, choosing the format from its extension.
func Save(path string, ds *series.Dataset, opts Options) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("chart: close %s: %w", path, cerr)
		}
	}()
	return Render(f, ds, opts, format)
}

// FormatOf returns the output format implied by path's extension.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if f == ext {
			return ext, nil
		}
	}
	return "", fmt.Errorf("chart: unsupported output format %q (want one of %v)", ext, Formats)
}

func build(ds *series.Dataset, opts Options) (*plot.Plot, error) {
	if ds == nil || len(ds.Series) == 0 {
		return nil, fmt.Errorf("chart: no series to draw")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	if opts.LogY {
		for _, s := range ds.Series {
			for _, pt := range s.Points {
				if pt.Y <= 0 {
					return nil, fmt.Errorf("chart: series %q has y=%v, log scale needs positive values", s.Name, pt.Y)
				}
			}
		}
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if opts.XTicks && len(ds.XValues) > 0 {
		p.X.Tick.Marker = constantTicks(ds.XValues)
	}

	for i, s := range ds.Series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = pt.X
			xys[j].Y = pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(legendLabel(opts.LabelFormat, s.Name), line)
	}
	return p, nil
}

func legendLabel(format, name string) string {
	if format == "" {
		return name
	}
	return fmt.Sprintf(format, name)
}

func constantTicks(values []float64) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return ticks
}
