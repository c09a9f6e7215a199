// Package exposition renders derived speedups in the Prometheus text
// exposition format, so a node_exporter textfile collector (or anything else
// that reads the format) can pick them up.
//
// Family builds a single GAUGE family; every speedup record becomes one sample
// labelled with the two carried-through column names. Write and WriteFile
// encode it with expfmt.
package exposition
