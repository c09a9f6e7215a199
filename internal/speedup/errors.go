package speedup

import "fmt"

// FormatError reports input whose shape is wrong: no header, too few
// columns, or CSV the reader cannot tokenize.
type FormatError struct {
	Line int // 1-based input line; 0 when the input is empty
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("speedup: line %d: %s", e.Line, msg)
	}
	return "speedup: " + msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParseError reports a timing field that is not a finite number.
type ParseError struct {
	Line   int
	Column string // header name of the offending column
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speedup: line %d: column %q: invalid number %q: %v", e.Line, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("speedup: line %d: column %q: invalid number %q", e.Line, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DivisionError reports a row whose ratio is undefined: the parallel time is
// zero, or the quotient does not fit a float64.
type DivisionError struct {
	Line  int
	Label string
	Msg   string
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("speedup: line %d: %q: %s", e.Line, e.Label, e.Msg)
}
