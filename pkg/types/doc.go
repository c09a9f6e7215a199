// Package types defines the benchmark records shared by the bench harness,
// the speedup deriver and the exporters. These are the canonical in-memory
// forms of one CSV row each, separate from their on-disk encoding.
package types
