// Package chart renders grouped series as line charts with gonum/plot.
//
// Each series becomes one coloured line and one legend entry. Render writes
// to any io.Writer in a named format; Save picks the format from the file
// extension (png, svg, pdf, eps, jpg, tif).
package chart
