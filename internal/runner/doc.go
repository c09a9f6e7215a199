// Package runner wires the partbench packages into the pipeline the CLI runs.
//
// A Runner holds one config.Config and exposes each stage:
//   - Bench: time the quicksort schemes, write the two timing tables
//   - Derive / DeriveStream: timing table to speedup table, plus the optional
//     Prometheus text exposition of the same values
//   - Summarize: per-label statistics of a derived speedup table
//   - Plot: render configured charts
//   - Run: all of the above in order
//
// Watch(ctx, cfgPath, cfg, onRun) runs the pipeline and then reruns it
// whenever the config file or a source input changes. It reloads the config
// on change and keeps the previous one when the new file does not parse.
package runner
