package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/partbench/partbench/internal/chart"
	"github.com/partbench/partbench/internal/exposition"
	"github.com/partbench/partbench/internal/qsort"
	"github.com/partbench/partbench/internal/series"
)

// Default values applied when fields are absent from the config file.
// The file names match the tables the benchmark scripts have always used.
const (
	DefaultPath            = "partbench.yaml"
	DefaultSpeedupInput    = "partition.csv"
	DefaultSpeedupOutput   = "partition2.csv"
	DefaultThresholdOutput = "threshold_v_time.csv"
	DefaultThreshold       = 10000
	DefaultMaxValue        = 100000
	DefaultSeed            = 1
)

// DefaultSizes are the array lengths timed when bench.sizes is absent:
// 2^10, 2^15 and 2^20.
var DefaultSizes = []int{1 << 10, 1 << 15, 1 << 20}

// DefaultThresholds are the cutoffs swept when bench.thresholds is absent.
var DefaultThresholds = []int{1000, 10000, 100000, 1000000}

// DefaultCharts returns the two charts partbench draws when the config file
// lists none: the reference partition speedups and the threshold sweep.
func DefaultCharts() []ChartConfig {
	return []ChartConfig{
		{
			Name:    "partition",
			Input:   series.BuiltinPrefix + "partition",
			GroupBy: "partition",
			X:       "array_size",
			Y:       "speedup",
			Title:   "Partition Type vs. Speedup",
			XLabel:  "Array Size",
			YLabel:  "Speedup",
			Width:   chart.DefaultWidth,
			Height:  chart.DefaultHeight,
			Output:  "partition_speedup.png",
		},
		{
			Name:        "threshold",
			Input:       DefaultThresholdOutput,
			GroupBy:     "array_size",
			X:           "threshold",
			Y:           "time",
			XMax:        2000000,
			Title:       "Time vs. Threshold for Different Array Sizes",
			XLabel:      "Threshold",
			YLabel:      "Time",
			LabelFormat: "Array Size: %s (line)",
			Width:       20,
			Height:      10,
			XTicks:      true,
			Output:      "threshold_v_time.png",
		},
	}
}

// Config is the top-level configuration. Fields map 1:1 to partbench.yaml.
type Config struct {
	Speedup SpeedupConfig `yaml:"speedup"`
	Bench   BenchConfig   `yaml:"bench"`
	Charts  []ChartConfig `yaml:"charts"`
}

// SpeedupConfig holds the deriver's files.
type SpeedupConfig struct {
	// Input is the timing table: label, size, sequential time, parallel time.
	Input string `yaml:"input"`

	// Output receives label, size, speedup. Created or truncated.
	Output string `yaml:"output"`

	// Exposition, when set, also writes the speedups to this file in the
	// Prometheus text format.
	Exposition string `yaml:"exposition"`

	// MetricName names the exposition gauge family.
	MetricName string `yaml:"metric_name"`
}

// BenchConfig controls the timing harness.
type BenchConfig struct {
	// Enabled makes `run` and `watch` regenerate the timing tables before
	// deriving. `bench` always runs.
	Enabled bool `yaml:"enabled"`

	// Schemes limits the partition schemes timed; empty means all of them.
	Schemes []string `yaml:"schemes"`

	Sizes      []int `yaml:"sizes"`
	Threshold  int   `yaml:"threshold"`
	Thresholds []int `yaml:"thresholds"`

	// Workers bounds the goroutines used by the parallel sort; 0 means unbounded.
	Workers  int   `yaml:"workers"`
	MaxValue int   `yaml:"max_value"`
	Seed     int64 `yaml:"seed"`

	// PartitionOutput defaults to speedup.input so a full run feeds the deriver.
	PartitionOutput string `yaml:"partition_output"`
	ThresholdOutput string `yaml:"threshold_output"`
}

// ChartConfig describes one chart.
type ChartConfig struct {
	// Name identifies the chart on the command line.
	Name string `yaml:"name"`

	// Input is a CSV path or "builtin:<name>".
	Input string `yaml:"input"`

	GroupBy string  `yaml:"group_by"`
	X       string  `yaml:"x"`
	Y       string  `yaml:"y"`
	XMax    float64 `yaml:"x_max"`

	Title       string `yaml:"title"`
	XLabel      string `yaml:"x_label"`
	YLabel      string `yaml:"y_label"`
	LabelFormat string `yaml:"label_format"`

	// Width and Height are in inches.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	LogY   bool    `yaml:"log_y"`
	XTicks bool    `yaml:"x_ticks"`

	// Output is the image path; its extension picks the format.
	Output string `yaml:"output"`
}

// Query returns the series selection for c.
func (c ChartConfig) Query() series.Query {
	return series.Query{GroupBy: c.GroupBy, X: c.X, Y: c.Y, XMax: c.XMax}
}

// Options returns the rendering options for c.
func (c ChartConfig) Options() chart.Options {
	return chart.Options{
		Title:       c.Title,
		XLabel:      c.XLabel,
		YLabel:      c.YLabel,
		LabelFormat: c.LabelFormat,
		Width:       c.Width,
		Height:      c.Height,
		LogY:        c.LogY,
		XTicks:      c.XTicks,
	}
}

// SchemeList resolves the configured scheme names.
func (b BenchConfig) SchemeList() ([]qsort.Scheme, error) {
	if len(b.Schemes) == 0 {
		return qsort.Schemes(), nil
	}
	out := make([]qsort.Scheme, 0, len(b.Schemes))
	for _, name := range b.Schemes {
		s, err := qsort.SchemeByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Chart returns the chart named name.
func (c *Config) Chart(name string) (ChartConfig, bool) {
	for _, ch := range c.Charts {
		if ch.Name == name {
			return ch, true
		}
	}
	return ChartConfig{}, false
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and validates the result.
// A charts list in data replaces the default charts.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	cfg.fillDerived()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with default values only. It is what
// partbench uses when no config file exists.
func Default() *Config {
	cfg := defaults()
	cfg.fillDerived()
	return cfg
}

func defaults() *Config {
	return &Config{
		Speedup: SpeedupConfig{
			Input:      DefaultSpeedupInput,
			Output:     DefaultSpeedupOutput,
			MetricName: exposition.DefaultMetricName,
		},
		Bench: BenchConfig{
			Sizes:           append([]int(nil), DefaultSizes...),
			Threshold:       DefaultThreshold,
			Thresholds:      append([]int(nil), DefaultThresholds...),
			MaxValue:        DefaultMaxValue,
			Seed:            DefaultSeed,
			ThresholdOutput: DefaultThresholdOutput,
		},
		Charts: DefaultCharts(),
	}
}

// fillDerived sets defaults that depend on other fields.
func (c *Config) fillDerived() {
	if c.Bench.PartitionOutput == "" {
		c.Bench.PartitionOutput = c.Speedup.Input
	}
	for i := range c.Charts {
		ch := &c.Charts[i]
		if ch.Width == 0 {
			ch.Width = chart.DefaultWidth
		}
		if ch.Height == 0 {
			ch.Height = chart.DefaultHeight
		}
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	sp := cfg.Speedup
	if sp.Input == "" {
		return fmt.Errorf("speedup.input is required")
	}
	if sp.Output == "" {
		return fmt.Errorf("speedup.output is required")
	}
	if samePath(sp.Input, sp.Output) {
		return fmt.Errorf("speedup.output must differ from speedup.input")
	}
	if sp.Exposition != "" && sp.MetricName == "" {
		return fmt.Errorf("speedup.metric_name is required when speedup.exposition is set")
	}

	b := cfg.Bench
	if _, err := b.SchemeList(); err != nil {
		return fmt.Errorf("bench.schemes: %w", err)
	}
	for i, n := range b.Sizes {
		if n <= 0 {
			return fmt.Errorf("bench.sizes[%d]: must be positive", i)
		}
	}
	for i, n := range b.Thresholds {
		if n <= 0 {
			return fmt.Errorf("bench.thresholds[%d]: must be positive", i)
		}
	}
	if b.Threshold < 0 {
		return fmt.Errorf("bench.threshold must not be negative")
	}
	if b.Workers < 0 {
		return fmt.Errorf("bench.workers must not be negative")
	}
	if b.MaxValue <= 0 {
		return fmt.Errorf("bench.max_value must be positive")
	}
	if b.ThresholdOutput == "" {
		return fmt.Errorf("bench.threshold_output is required")
	}
	if samePath(b.PartitionOutput, sp.Output) || samePath(b.ThresholdOutput, sp.Output) {
		return fmt.Errorf("bench outputs must differ from speedup.output")
	}

	seen := make(map[string]bool, len(cfg.Charts))
	for i, ch := range cfg.Charts {
		if ch.Name == "" {
			return fmt.Errorf("charts[%d]: name is required", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("charts[%d]: duplicate name %q", i, ch.Name)
		}
		seen[ch.Name] = true

		switch {
		case ch.Input == "":
			return fmt.Errorf("charts[%d] %q: input is required", i, ch.Name)
		case ch.GroupBy == "" || ch.X == "" || ch.Y == "":
			return fmt.Errorf("charts[%d] %q: group_by, x and y are required", i, ch.Name)
		case ch.Output == "":
			return fmt.Errorf("charts[%d] %q: output is required", i, ch.Name)
		case ch.Width <= 0 || ch.Height <= 0:
			return fmt.Errorf("charts[%d] %q: width and height must be positive", i, ch.Name)
		}
		if _, err := chart.FormatOf(ch.Output); err != nil {
			return fmt.Errorf("charts[%d] %q: %w", i, ch.Name, err)
		}
		if name, ok := strings.CutPrefix(ch.Input, series.BuiltinPrefix); ok {
			if _, ok := series.Builtin(name); !ok {
				return fmt.Errorf("charts[%d] %q: unknown builtin dataset %q (have %v)", i, ch.Name, name, series.BuiltinNames())
			}
		}
		if ch.LabelFormat != "" && strings.Count(ch.LabelFormat, "%s") != 1 {
			return fmt.Errorf("charts[%d] %q: label_format must contain exactly one %%s", i, ch.Name)
		}
	}
	return nil
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
