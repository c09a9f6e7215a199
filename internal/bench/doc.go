// Package bench times the quicksort variants and writes the timing tables the
// rest of partbench consumes.
//
// Partitions times Sort against ParallelSort for every scheme and size and
// produces the partition,array_size,sequential_time,parallel_time table that
// package speedup derives from. Thresholds times ParallelSort across
// sequential cutoffs and produces the array_size,threshold,time table behind
// the threshold chart.
//
// Every sorted array is checked against its input; a failed check aborts the
// run. Input arrays come from a seeded generator so runs are repeatable.
package bench
