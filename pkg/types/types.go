package types

import "strconv"

// BenchmarkRecord is one timing measurement: a partition scheme label, the
// input size, and the sequential and parallel wall times in seconds.
type BenchmarkRecord struct {
	Partition      string
	ArraySize      int
	SequentialTime float64
	ParallelTime   float64
}

// Fields returns the record as CSV fields in column order.
func (r BenchmarkRecord) Fields() []string {
	return []string{
		r.Partition,
		strconv.Itoa(r.ArraySize),
		strconv.FormatFloat(r.SequentialTime, 'f', -1, 64),
		strconv.FormatFloat(r.ParallelTime, 'f', -1, 64),
	}
}

// SpeedupRecord is one derived row. Label and Size are carried through from
// the input as text, untouched.
type SpeedupRecord struct {
	Label   string
	Size    string
	Speedup float64
}

// ThresholdSample is one parallel sort timing at a given sequential cutoff.
type ThresholdSample struct {
	ArraySize int
	Threshold int
	Time      float64
}

// Fields returns the sample as CSV fields in column order.
func (s ThresholdSample) Fields() []string {
	return []string{
		strconv.Itoa(s.ArraySize),
		strconv.Itoa(s.Threshold),
		strconv.FormatFloat(s.Time, 'f', -1, 64),
	}
}
