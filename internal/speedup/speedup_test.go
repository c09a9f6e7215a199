package speedup

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/partbench/partbench/pkg/types"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// derive runs Derive over in and returns the output text, the collected
// records and the error.
func derive(t *testing.T, in string) (string, []types.SpeedupRecord, error) {
	t.Helper()
	var out bytes.Buffer
	var recs []types.SpeedupRecord
	_, err := Derive(strings.NewReader(in), &out, func(r types.SpeedupRecord) {
		recs = append(recs, r)
	})
	return out.String(), recs, err
}

// --- worked example ---

func TestDerive_Example(t *testing.T) {
	in := "partition,array_size,sequential_time,parallel_time\n" +
		"partition_hoare,1024,0.33,0.25\n"
	want := "partition,array_size,speedup\n" +
		"partition_hoare,1024,1.32\n"

	got, _, err := derive(t, in)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if got != want {
		t.Errorf("output mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

// --- header transform ---

func TestDerive_HeaderTransform(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"canonical", "partition,array_size,sequential_time,parallel_time", "partition,array_size,speedup"},
		{"renamed", "algo,n,t_seq,t_par", "algo,n,speedup"},
		{"extra columns dropped", "a,b,c,d,e,f", "a,b,speedup"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := Derive(strings.NewReader(tc.header+"\n"), &out, nil)
			if err != nil {
				t.Fatalf("Derive() error = %v", err)
			}
			if got := strings.TrimSuffix(out.String(), "\n"); got != tc.want {
				t.Errorf("header = %q, want %q", got, tc.want)
			}
			if res.Rows != 0 {
				t.Errorf("Rows = %d, want 0", res.Rows)
			}
			parts := strings.Split(tc.want, ",")
			if res.Header != (Header{Label: parts[0], Size: parts[1]}) {
				t.Errorf("Header = %+v", res.Header)
			}
		})
	}
}

// --- row count, order and per-row values ---

func TestDerive_RowsPreserveCountOrderAndValues(t *testing.T) {
	in := `partition,array_size,sequential_time,parallel_time
partition_lomuto,1024,0.72,0.65
partition_median_of_three,32768,1.5,1.5
partition_hoare,1048576,3,1.5
partition_lomuto,33554432,0.25,0.5,ignored,columns
`
	out, recs, err := derive(t, in)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	// Divide at run time: a constant 0.72/0.65 is exact and rounds differently.
	seq, par := 0.72, 0.65
	lomuto := seq / par
	if got := FormatRatio(lomuto); got != "1.1076923076923075" {
		t.Fatalf("FormatRatio(0.72/0.65) = %q, want 1.1076923076923075", got)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("output lines = %d, want 5 (header + 4 rows)", len(lines))
	}
	wantLines := []string{
		"partition,array_size,speedup",
		"partition_lomuto,1024,1.1076923076923075",
		"partition_median_of_three,32768,1.0",
		"partition_hoare,1048576,2.0",
		"partition_lomuto,33554432,0.5",
	}
	if diff := cmp.Diff(wantLines, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	wantRecs := []types.SpeedupRecord{
		{Label: "partition_lomuto", Size: "1024", Speedup: lomuto},
		{Label: "partition_median_of_three", Size: "32768", Speedup: 1},
		{Label: "partition_hoare", Size: "1048576", Speedup: 2},
		{Label: "partition_lomuto", Size: "33554432", Speedup: 0.5},
	}
	if diff := cmp.Diff(wantRecs, recs); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_SizeCarriedVerbatim(t *testing.T) {
	in := "p,n,s,q\nx, 0001024 ,1,4\n"
	_, recs, err := derive(t, in)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if recs[0].Size != " 0001024 " {
		t.Errorf("Size = %q, want it untouched", recs[0].Size)
	}
	if !almostEqual(recs[0].Speedup, 0.25, 1e-12) {
		t.Errorf("Speedup = %v, want 0.25", recs[0].Speedup)
	}
}

func TestDerive_WhitespaceAroundTimes(t *testing.T) {
	_, recs, err := derive(t, "p,n,s,q\nx,1, 0.5 , 0.25\n")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if recs[0].Speedup != 2 {
		t.Errorf("Speedup = %v, want 2", recs[0].Speedup)
	}
}

func TestDerive_Idempotent(t *testing.T) {
	in := "partition,array_size,sequential_time,parallel_time\n" +
		"partition_hoare,1024,0.33,0.25\n" +
		"partition_lomuto,2048,0.1,0.3\n"
	first, _, err := derive(t, in)
	if err != nil {
		t.Fatalf("first Derive() error = %v", err)
	}
	second, _, err := derive(t, in)
	if err != nil {
		t.Fatalf("second Derive() error = %v", err)
	}
	if first != second {
		t.Errorf("re-run output differs:\n%s", cmp.Diff(first, second))
	}
}

// --- error taxonomy ---

func TestDerive_EmptyInput_FormatError(t *testing.T) {
	out, _, err := derive(t, "")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestDerive_ShortHeader_FormatError(t *testing.T) {
	out, _, err := derive(t, "partition,array_size,sequential_time\n")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Line != 1 {
		t.Errorf("Line = %d, want 1", fe.Line)
	}
	if out != "" {
		t.Errorf("output = %q, want nothing written", out)
	}
}

func TestDerive_ShortRow_FormatError(t *testing.T) {
	in := "partition,array_size,sequential_time,parallel_time\n" +
		"partition_hoare,1024,0.5,0.25\n" +
		"partition_lomuto,1024,0.33\n" +
		"partition_hoare,2048,1,1\n"
	out, recs, err := derive(t, in)

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Line != 3 {
		t.Errorf("Line = %d, want 3", fe.Line)
	}
	// The row before the failure is flushed; the bad row and everything
	// after it are not.
	want := "partition,array_size,speedup\npartition_hoare,1024,2.0\n"
	if out != want {
		t.Errorf("partial output mismatch (-want +got):\n%s", cmp.Diff(want, out))
	}
	if len(recs) != 1 {
		t.Errorf("visited %d records, want 1", len(recs))
	}
}

func TestDerive_BlankRow_FormatError(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLine int
		wantOut  string
	}{
		{
			name:     "between rows",
			in:       "p,n,s,q\nx,1,1,2\n\ny,2,1,4\n",
			wantLine: 3,
			wantOut:  "p,n,speedup\nx,1,0.5\n",
		},
		{
			name:     "after header",
			in:       "p,n,s,q\n\r\nx,1,1,2\n",
			wantLine: 2,
			wantOut:  "p,n,speedup\n",
		},
		{
			name:     "before header",
			in:       "\np,n,s,q\nx,1,1,2\n",
			wantLine: 1,
			wantOut:  "",
		},
		{
			name:     "after multi-line quoted field",
			in:       "p,n,s,q\n\"x\ny\",1,1,2\n\nz,2,1,4\n",
			wantLine: 4,
			wantOut:  "p,n,speedup\n\"x\ny\",1,0.5\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := derive(t, tc.in)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FormatError", err)
			}
			if fe.Line != tc.wantLine {
				t.Errorf("Line = %d, want %d", fe.Line, tc.wantLine)
			}
			if out != tc.wantOut {
				t.Errorf("partial output mismatch (-want +got):\n%s", cmp.Diff(tc.wantOut, out))
			}
		})
	}
}

func TestDerive_TrailingBlankLinesIgnored(t *testing.T) {
	out, recs, err := derive(t, "p,n,s,q\nx,1,1,2\n\n\n")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if out != "p,n,speedup\nx,1,0.5\n" || len(recs) != 1 {
		t.Errorf("out = %q, records = %d", out, len(recs))
	}
}

func TestDerive_MalformedCSV_FormatError(t *testing.T) {
	_, _, err := derive(t, "p,n,s,q\nx,1,\"0.5,0.25\n")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
}

func TestDerive_ParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		row        string
		wantColumn string
	}{
		{"sequential not numeric", "x,1,fast,0.25", "sequential_time"},
		{"parallel not numeric", "x,1,0.5,slow", "parallel_time"},
		{"empty sequential", "x,1,,0.25", "sequential_time"},
		{"nan", "x,1,NaN,0.25", "sequential_time"},
		{"infinity", "x,1,0.5,Inf", "parallel_time"},
		{"out of range", "x,1,1e400,1", "sequential_time"},
		{"hex float", "x,1,0x1p-2,1", "sequential_time"},
		{"signed hex float", "x,1,1,-0X1P0", "parallel_time"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := "partition,array_size,sequential_time,parallel_time\n" + tc.row + "\n"
			_, _, err := derive(t, in)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Column != tc.wantColumn {
				t.Errorf("Column = %q, want %q", pe.Column, tc.wantColumn)
			}
			if pe.Line != 2 {
				t.Errorf("Line = %d, want 2", pe.Line)
			}
		})
	}
}

func TestDerive_ZeroParallelTime_DivisionError(t *testing.T) {
	for _, zero := range []string{"0", "0.0", "-0", "0e10"} {
		t.Run(zero, func(t *testing.T) {
			in := "p,n,s,q\npartition_hoare,1024,0.33," + zero + "\n"
			out, _, err := derive(t, in)
			var de *DivisionError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want *DivisionError", err)
			}
			if de.Label != "partition_hoare" || de.Line != 2 {
				t.Errorf("DivisionError = %+v", de)
			}
			if out != "p,n,speedup\n" {
				t.Errorf("output = %q, want header only", out)
			}
		})
	}
}

func TestDerive_Overflow_DivisionError(t *testing.T) {
	_, _, err := derive(t, "p,n,s,q\nx,1,1e300,1e-300\n")
	var de *DivisionError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DivisionError", err)
	}
}

// --- FormatRatio ---

func TestFormatRatio(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.33 / 0.25, "1.32"},
		{2, "2.0"},
		{1, "1.0"},
		{0.5, "0.5"},
		{1e-7, "0.0000001"},
		{1e20, "100000000000000000000.0"},
		{1.3257575757575757, "1.3257575757575757"},
	}
	for _, tc := range tests {
		if got := FormatRatio(tc.in); got != tc.want {
			t.Errorf("FormatRatio(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- DeriveFile ---

func TestDeriveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "partition.csv")
	dst := filepath.Join(dir, "partition2.csv")
	writeFile(t, src, "partition,array_size,sequential_time,parallel_time\npartition_hoare,1024,0.33,0.25\n")
	// A stale, longer destination must be truncated.
	writeFile(t, dst, strings.Repeat("stale\n", 100))

	res, err := DeriveFile(src, dst, nil)
	if err != nil {
		t.Fatalf("DeriveFile() error = %v", err)
	}
	if res.Rows != 1 {
		t.Errorf("Rows = %d, want 1", res.Rows)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "partition,array_size,speedup\npartition_hoare,1024,1.32\n"; string(got) != want {
		t.Errorf("file content mismatch (-want +got):\n%s", cmp.Diff(want, string(got)))
	}
}

func TestDeriveFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := DeriveFile(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(statErr) {
		t.Errorf("output created despite missing input")
	}
}

func TestDeriveFile_SamePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partition.csv")
	content := "p,n,s,q\nx,1,1,1\n"
	writeFile(t, path, content)

	if _, err := DeriveFile(path, filepath.Join(filepath.Dir(path), ".", "partition.csv"), nil); err == nil {
		t.Fatal("expected error when input and output are the same file")
	}
	got, _ := os.ReadFile(path)
	if string(got) != content {
		t.Errorf("input was modified: %q", got)
	}
}

func TestDeriveFile_PartialOutputKept(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	dst := filepath.Join(dir, "out.csv")
	writeFile(t, src, "p,n,s,q\na,1,1,2\nb,2,1,0\n")

	_, err := DeriveFile(src, dst, nil)
	var de *DivisionError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DivisionError", err)
	}
	got, _ := os.ReadFile(dst)
	if want := "p,n,speedup\na,1,0.5\n"; string(got) != want {
		t.Errorf("partial file = %q, want %q", got, want)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
