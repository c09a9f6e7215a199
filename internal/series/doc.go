// Package series turns a tabular CSV into grouped line series for charting.
//
// Columns are addressed by header name. Rows are grouped by one categorical
// column in first-appearance order, and each group becomes one series of
// (x, y) points in file order. An optional XMax drops rows whose x exceeds it.
//
// Builtin datasets are addressed as "builtin:<name>" through Open.
package series
