// Package summary condenses a speedup table into one row per label: run
// count, minimum, median, arithmetic mean, geometric mean and maximum speedup.
//
// Summarize works on records in memory (the deriver's visit callback feeds
// it directly); Read parses a speedup table written earlier.
package summary
