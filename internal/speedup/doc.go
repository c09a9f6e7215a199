// Package speedup derives a speedup column from benchmark timing tables.
//
// Derive streams a CSV whose first four columns are label, array size,
// sequential time and parallel time. It writes a CSV holding the first two
// columns unchanged plus "speedup" = sequential / parallel, one row per input
// row, in input order. Columns past the fourth are ignored and the two timing
// columns are dropped.
//
// Any bad row aborts the run on the first occurrence:
//   - *FormatError: missing or short header, short row, malformed CSV
//   - *ParseError: a timing field is not a finite number
//   - *DivisionError: zero parallel time, or a ratio that overflows
//
// Rows written before the failure are flushed and stay in the output.
// DeriveFile wraps Derive with file acquisition and guarantees both files are
// closed on every path.
package speedup
