package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// BuiltinPrefix marks an input that names a baked-in dataset instead of a file.
const BuiltinPrefix = "builtin:"

// Query selects the columns that make up the series.
type Query struct {
	GroupBy string
	X       string
	Y       string

	// XMax, when positive, drops rows whose x value is greater than it.
	XMax float64
}

// Point is one (x, y) observation.
type Point struct {
	X, Y float64
}

// Series is every point sharing one group label.
type Series struct {
	Name   string
	Points []Point
}

// Dataset is the result of Read.
type Dataset struct {
	Series []Series

	// XValues holds the distinct x values kept, in first-appearance order.
	XValues []float64
}

// Len returns the total number of points across all series.
func (d *Dataset) Len() int {
	n := 0
	for _, s := range d.Series {
		n += len(s.Points)
	}
	return n
}

// Read parses the CSV in r and groups its rows according to q.
func Read(r io.Reader, q Query) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("series: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("series: read header: %w", err)
	}

	groupIdx, err := columnIndex(header, q.GroupBy)
	if err != nil {
		return nil, err
	}
	xIdx, err := columnIndex(header, q.X)
	if err != nil {
		return nil, err
	}
	yIdx, err := columnIndex(header, q.Y)
	if err != nil {
		return nil, err
	}
	width := max(groupIdx, xIdx, yIdx) + 1

	ds := &Dataset{}
	groups := make(map[string]int)
	seenX := make(map[float64]bool)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("series: read: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) < width {
			return nil, fmt.Errorf("series: line %d: row has %d fields, want at least %d", line, len(row), width)
		}

		x, err := parseNumber(row[xIdx])
		if err != nil {
			return nil, fmt.Errorf("series: line %d: column %q: %w", line, q.X, err)
		}
		if q.XMax > 0 && x > q.XMax {
			continue
		}
		y, err := parseNumber(row[yIdx])
		if err != nil {
			return nil, fmt.Errorf("series: line %d: column %q: %w", line, q.Y, err)
		}

		name := row[groupIdx]
		i, ok := groups[name]
		if !ok {
			i = len(ds.Series)
			groups[name] = i
			ds.Series = append(ds.Series, Series{Name: name})
		}
		ds.Series[i].Points = append(ds.Series[i].Points, Point{X: x, Y: y})

		if !seenX[x] {
			seenX[x] = true
			ds.XValues = append(ds.XValues, x)
		}
	}
	return ds, nil
}

// Open returns a reader for input, which is either a file path or
// BuiltinPrefix followed by a builtin dataset name.
func Open(input string) (io.ReadCloser, error) {
	if name, ok := strings.CutPrefix(input, BuiltinPrefix); ok {
		r, ok := Builtin(name)
		if !ok {
			return nil, fmt.Errorf("series: unknown builtin dataset %q", name)
		}
		return io.NopCloser(r), nil
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("series: %w", err)
	}
	return f, nil
}

// ReadFile opens input with Open and reads it with Read.
func ReadFile(input string, q Query) (*Dataset, error) {
	rc, err := Open(input)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc, q)
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("series: column %q not found in header %v", name, header)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
