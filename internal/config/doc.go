// Package config loads the partbench configuration file (partbench.yaml).
//
// Top-level types:
//   - Config{Speedup, Bench, Charts}: full config tree parsed from YAML
//   - SpeedupConfig: input, output, optional exposition file, metric_name
//   - BenchConfig: schemes, sizes, threshold(s), workers, seed and the two
//     timing table paths
//   - ChartConfig: one chart; Query() and Options() convert it for the
//     series and chart packages
//
// Load(path) reads the YAML file, applies defaults (partition.csv into
// partition2.csv, the partition and threshold charts, sizes 2^10 to 2^20),
// then validates required fields and cross-field constraints. Default()
// returns the same defaults without a file.
package config
