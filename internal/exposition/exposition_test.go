package exposition

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/partbench/partbench/internal/speedup"
	"github.com/partbench/partbench/pkg/types"
)

var partitionHeader = speedup.Header{Label: "partition", Size: "array_size"}

var sampleRecords = []types.SpeedupRecord{
	{Label: "partition_hoare", Size: "1024", Speedup: 1.32},
	{Label: "partition_lomuto", Size: "1024", Speedup: 0.5},
}

// parse decodes Prometheus text back into metric families.
func parse(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse exposition: %v\n%s", err, text)
	}
	return mfs
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestFamily_Write_RoundTrip(t *testing.T) {
	mf, err := Family(DefaultMetricName, "", partitionHeader, sampleRecords)
	if err != nil {
		t.Fatalf("Family() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, mf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	text := buf.String()
	if !strings.Contains(text, "# TYPE partbench_speedup gauge") {
		t.Errorf("missing TYPE line:\n%s", text)
	}

	got := parse(t, text)[DefaultMetricName]
	if got == nil {
		t.Fatalf("family %q not found after round trip", DefaultMetricName)
	}
	if got.GetType() != dto.MetricType_GAUGE {
		t.Errorf("type = %v, want GAUGE", got.GetType())
	}
	if len(got.GetMetric()) != 2 {
		t.Fatalf("metrics = %d, want 2", len(got.GetMetric()))
	}

	m := got.GetMetric()[0]
	labels := labelsOf(m)
	if labels["partition"] != "partition_hoare" || labels["array_size"] != "1024" {
		t.Errorf("labels = %v", labels)
	}
	if v := m.GetGauge().GetValue(); v != 1.32 {
		t.Errorf("value = %v, want 1.32", v)
	}
}

func TestFamily_InvalidMetricName(t *testing.T) {
	if _, err := Family("9-speedup", "", partitionHeader, sampleRecords); err == nil {
		t.Fatal("expected error for invalid metric name")
	}
}

func TestFamily_SameColumnNames(t *testing.T) {
	mf, err := Family("x", "help", speedup.Header{Label: "n", Size: "n"}, sampleRecords[:1])
	if err != nil {
		t.Fatalf("Family() error = %v", err)
	}
	labels := labelsOf(mf.GetMetric()[0])
	if _, ok := labels["n_size"]; !ok {
		t.Errorf("labels = %v, want a distinct size label", labels)
	}
}

func TestFamily_DuplicateSeries(t *testing.T) {
	recs := append(append([]types.SpeedupRecord(nil), sampleRecords...),
		types.SpeedupRecord{Label: "partition_hoare", Size: "1024", Speedup: 2})

	_, err := Family(DefaultMetricName, "", partitionHeader, recs)
	if err == nil {
		t.Fatal("Family() accepted two samples for the same series")
	}
	if !strings.Contains(err.Error(), `partition="partition_hoare"`) {
		t.Errorf("error %q does not name the series", err)
	}

	// Same label at another size is a distinct series.
	recs[2].Size = "2048"
	if _, err := Family(DefaultMetricName, "", partitionHeader, recs); err != nil {
		t.Errorf("Family() error = %v", err)
	}
}

func TestFamily_Empty(t *testing.T) {
	mf, err := Family(DefaultMetricName, "", partitionHeader, nil)
	if err != nil {
		t.Fatalf("Family() error = %v", err)
	}
	if len(mf.GetMetric()) != 0 {
		t.Errorf("metrics = %d, want 0", len(mf.GetMetric()))
	}
}

func TestLabelName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"partition", "partition"},
		{"array_size", "array_size"},
		{"array size", "array_size"},
		{"array-size", "array_size"},
		{"1st", "_1st"},
		{"__reserved", "reserved"},
		{"", "label"},
		{"???", "label"},
	}
	for _, tc := range tests {
		if got := LabelName(tc.in); got != tc.want {
			t.Errorf("LabelName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partition.prom")

	mf, err := Family(DefaultMetricName, "", partitionHeader, sampleRecords)
	if err != nil {
		t.Fatalf("Family() error = %v", err)
	}
	if err := WriteFile(path, mf); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := parse(t, string(data))[DefaultMetricName]; len(got.GetMetric()) != 2 {
		t.Errorf("file holds %d samples, want 2", len(got.GetMetric()))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the final file (temp file left behind?)", len(entries))
	}
}
