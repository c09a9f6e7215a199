package exposition

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"

	"github.com/partbench/partbench/internal/speedup"
	"github.com/partbench/partbench/pkg/types"
)

// DefaultMetricName is used when the config does not name the family.
const DefaultMetricName = "partbench_speedup"

const defaultHelp = "Sequential time divided by parallel time for one benchmark run."

// Family builds a GAUGE family holding one sample per record. Label names are
// taken from hdr and sanitized with LabelName. Two records with the same
// label and size would be the same series, so they are rejected.
func Family(name, help string, hdr speedup.Header, recs []types.SpeedupRecord) (*dto.MetricFamily, error) {
	if !model.IsValidMetricName(model.LabelValue(name)) {
		return nil, fmt.Errorf("exposition: invalid metric name %q", name)
	}
	if help == "" {
		help = defaultHelp
	}

	labelKey, sizeKey := LabelName(hdr.Label), LabelName(hdr.Size)
	if labelKey == sizeKey {
		sizeKey += "_size"
	}

	mf := &dto.MetricFamily{
		Name:   ptr(name),
		Help:   ptr(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: make([]*dto.Metric, 0, len(recs)),
	}
	seen := make(map[[2]string]bool, len(recs))
	for _, r := range recs {
		key := [2]string{r.Label, r.Size}
		if seen[key] {
			return nil, fmt.Errorf("exposition: duplicate series %s=%q %s=%q", labelKey, r.Label, sizeKey, r.Size)
		}
		seen[key] = true
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: ptr(labelKey), Value: ptr(r.Label)},
				{Name: ptr(sizeKey), Value: ptr(r.Size)},
			},
			Gauge: &dto.Gauge{Value: ptr(r.Speedup)},
		})
	}
	return mf, nil
}

// Write encodes mf in the Prometheus text format.
func Write(w io.Writer, mf *dto.MetricFamily) error {
	if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
		return fmt.Errorf("exposition: encode %s: %w", mf.GetName(), err)
	}
	return nil
}

// WriteFile writes mf to path. The content goes to a temporary file in the
// same directory first and is renamed into place, so a collector never reads
// a half-written file.
func WriteFile(path string, mf *dto.MetricFamily) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("exposition: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := Write(tmp, mf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("exposition: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("exposition: rename into place: %w", err)
	}
	return nil
}

// LabelName turns a CSV column name into a valid Prometheus label name:
// invalid characters become underscores and a leading digit gets an
// underscore prefix.
func LabelName(column string) string {
	if model.LabelName(column).IsValid() && !strings.HasPrefix(column, "__") {
		return column
	}
	var b strings.Builder
	for i, r := range column {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name == "" {
		return "label"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func ptr[T any](v T) *T { return &v }
