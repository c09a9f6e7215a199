package speedup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/partbench/partbench/pkg/types"
)

// Column is the header name of the derived column.
const Column = "speedup"

// minFields is the number of leading columns every row must carry:
// label, size, sequential time, parallel time.
const minFields = 4

// Header holds the names of the two columns carried through to the output.
type Header struct {
	Label string
	Size  string
}

// Result summarises a completed derivation.
type Result struct {
	Header Header
	Rows   int
}

// Derive reads timing rows from r and writes speedup rows to w.
//
// visit, when non-nil, is called with every record after it has been handed
// to the CSV writer. It sees records in input order.
func Derive(r io.Reader, w io.Writer, visit func(types.SpeedupRecord)) (res *Result, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may carry extra trailing columns

	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if ferr := cw.Error(); ferr != nil && err == nil {
			res, err = nil, fmt.Errorf("speedup: write: %w", ferr)
		}
	}()

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Msg: "missing header row"}
	}
	if err != nil {
		return nil, readError(err)
	}
	if line, _ := cr.FieldPos(0); line > 1 {
		return nil, &FormatError{Line: 1, Msg: "empty header row"}
	}
	if len(header) < minFields {
		line, _ := cr.FieldPos(0)
		return nil, &FormatError{
			Line: line,
			Msg:  fmt.Sprintf("header has %d columns, want at least %d", len(header), minFields),
		}
	}

	next := recordEnd(cr, header) + 1

	res = &Result{Header: Header{Label: header[0], Size: header[1]}}
	if err := cw.Write([]string{header[0], header[1], Column}); err != nil {
		return nil, fmt.Errorf("speedup: write header: %w", err)
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := cr.FieldPos(0)
		if line > next {
			// encoding/csv drops blank lines; an empty row between records is
			// still a row without fields.
			return nil, &FormatError{Line: next, Msg: "empty row"}
		}
		next = recordEnd(cr, fields) + 1

		rec, err := deriveRow(fields, header, line)
		if err != nil {
			return nil, err
		}
		if err := cw.Write([]string{rec.Label, rec.Size, FormatRatio(rec.Speedup)}); err != nil {
			return nil, fmt.Errorf("speedup: write line %d: %w", line, err)
		}
		res.Rows++
		if visit != nil {
			visit(rec)
		}
	}
	return res, nil
}

// DeriveFile runs Derive from the file at src into the file at dst, creating
// or truncating dst. Both files are closed before DeriveFile returns.
func DeriveFile(src, dst string, visit func(types.SpeedupRecord)) (res *Result, err error) {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil, fmt.Errorf("speedup: input and output are the same file %q", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("speedup: open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("speedup: create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("speedup: close output: %w", cerr)
		}
	}()

	res, err = Derive(in, out, visit)
	if err != nil {
		return nil, err
	}
	slog.Debug("speedup: derived", "input", src, "output", dst, "rows", res.Rows)
	return res, nil
}

// FormatRatio renders v as a plain decimal with the fewest digits that read
// back to the same float64. Integral values keep a trailing ".0".
func FormatRatio(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// deriveRow computes the speedup record for one data row.
func deriveRow(fields, header []string, line int) (types.SpeedupRecord, error) {
	if len(fields) < minFields {
		return types.SpeedupRecord{}, &FormatError{
			Line: line,
			Msg:  fmt.Sprintf("row has %d fields, want at least %d", len(fields), minFields),
		}
	}

	seq, err := parseTime(fields[2], header[2], line)
	if err != nil {
		return types.SpeedupRecord{}, err
	}
	par, err := parseTime(fields[3], header[3], line)
	if err != nil {
		return types.SpeedupRecord{}, err
	}

	if par == 0 {
		return types.SpeedupRecord{}, &DivisionError{Line: line, Label: fields[0], Msg: "parallel time is zero"}
	}
	ratio := seq / par
	if math.IsInf(ratio, 0) {
		return types.SpeedupRecord{}, &DivisionError{Line: line, Label: fields[0], Msg: "ratio overflows float64"}
	}

	return types.SpeedupRecord{Label: fields[0], Size: fields[1], Speedup: ratio}, nil
}

// parseTime parses a timing field. Surrounding blanks are tolerated;
// NaN and infinities are not.
func parseTime(s, column string, line int) (float64, error) {
	t := strings.TrimSpace(s)
	if isHex(t) {
		return 0, &ParseError{Line: line, Column: column, Value: s}
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, &ParseError{Line: line, Column: column, Value: s, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Line: line, Column: column, Value: s}
	}
	return v, nil
}

// isHex reports whether s carries a 0x prefix, optionally signed.
// strconv accepts hexadecimal floats; timing tables only hold decimals.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// recordEnd returns the input line on which the record just read ends.
// Quoted fields may span lines.
func recordEnd(cr *csv.Reader, fields []string) int {
	last := len(fields) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(fields[last], "\n")
}

// readError converts a csv reader failure into the package taxonomy.
func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Line: pe.Line, Msg: "malformed csv", Err: pe.Err}
	}
	return fmt.Errorf("speedup: read: %w", err)
}
