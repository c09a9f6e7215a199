package qsort

import (
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Scheme is a named partition strategy.
type Scheme struct {
	Name string

	// split partitions a (len(a) >= 2) and returns the boundaries of the two
	// halves still to be sorted: a[:left] and a[right:].
	split func(a []int) (left, right int)

	// cutoff is the length at or below which a subarray is insertion sorted
	// instead of partitioned. Zero partitions all the way down.
	cutoff int
}

// InsertionCutoff is the subarray length LomutoInsertion stops partitioning
// at.
const InsertionCutoff = 50

// The supported schemes, named after the benchmark labels.
var (
	Lomuto        = Scheme{Name: "partition_lomuto", split: lomuto}
	Hoare         = Scheme{Name: "partition_hoare", split: hoare}
	MedianOfThree = Scheme{Name: "partition_median_of_three", split: medianOfThree}

	// LomutoInsertion is Lomuto with small subarrays finished by insertion
	// sort. It is not in the default benchmark set; select it by name.
	LomutoInsertion = Scheme{Name: "partition_lomuto_insertion", split: lomuto, cutoff: InsertionCutoff}
)

// Schemes returns every scheme benchmarked by default, in benchmark order.
func Schemes() []Scheme {
	return []Scheme{Lomuto, MedianOfThree, Hoare}
}

// SchemeByName looks a scheme up by its label. Any scheme is accepted, not
// only the defaults.
func SchemeByName(name string) (Scheme, error) {
	for _, s := range append(Schemes(), LomutoInsertion) {
		if s.Name == name {
			return s, nil
		}
	}
	return Scheme{}, fmt.Errorf("qsort: unknown partition scheme %q", name)
}

// Sort sorts a in place using s.
func Sort(a []int, s Scheme) {
	for len(a) > 1 {
		if len(a) <= s.cutoff {
			insertionSort(a)
			return
		}
		l, r := s.split(a)
		// Recurse into the smaller half and loop on the larger one to keep
		// the stack depth logarithmic.
		if l < len(a)-r {
			Sort(a[:l], s)
			a = a[r:]
		} else {
			Sort(a[r:], s)
			a = a[:l]
		}
	}
}

// ParallelSort sorts a in place using s. Subarrays longer than threshold are
// split and their left half handed to another goroutine when one of the
// workers slots is free; shorter ones are sorted with Sort. workers <= 0
// leaves the goroutine count unbounded.
func ParallelSort(a []int, s Scheme, threshold, workers int) {
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	parallelSort(&g, a, s, threshold)
	_ = g.Wait() // tasks never fail
}

func parallelSort(g *errgroup.Group, a []int, s Scheme, threshold int) {
	for len(a) > 1 {
		if len(a) <= threshold {
			Sort(a, s)
			return
		}
		l, r := s.split(a)
		left := a[:l]
		if !g.TryGo(func() error {
			parallelSort(g, left, s, threshold)
			return nil
		}) {
			parallelSort(g, left, s, threshold)
		}
		a = a[r:]
	}
}

// IsSortedPermutation reports whether sorted is orig in ascending order.
// orig is not modified.
func IsSortedPermutation(orig, sorted []int) bool {
	if len(orig) != len(sorted) || !slices.IsSorted(sorted) {
		return false
	}
	want := slices.Clone(orig)
	slices.Sort(want)
	return slices.Equal(want, sorted)
}

func insertionSort(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for ; j >= 0 && a[j] > v; j-- {
			a[j+1] = a[j]
		}
		a[j+1] = v
	}
}

// lomuto partitions around the last element and excludes the pivot, which
// ends in its final position.
func lomuto(a []int) (int, int) {
	hi := len(a) - 1
	pivot := a[hi]
	i := 0
	for j := 0; j < hi; j++ {
		if a[j] < pivot {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i, i + 1
}

// hoare partitions around the first element.
func hoare(a []int) (int, int) {
	j := hoareSweep(a, a[0])
	return j + 1, j + 1
}

// medianOfThree orders the first, middle and last elements, then sweeps
// around the middle one.
func medianOfThree(a []int) (int, int) {
	lo, mid, hi := 0, (len(a)-1)/2, len(a)-1
	if a[mid] < a[lo] {
		a[mid], a[lo] = a[lo], a[mid]
	}
	if a[hi] < a[lo] {
		a[hi], a[lo] = a[lo], a[hi]
	}
	if a[hi] < a[mid] {
		a[hi], a[mid] = a[mid], a[hi]
	}
	j := hoareSweep(a, a[mid])
	return j + 1, j + 1
}

// hoareSweep runs the two-index Hoare sweep around pivot and returns j such
// that every element of a[:j+1] is <= pivot and every element of a[j+1:] is
// >= pivot. pivot must be taken from a position below len(a)-1 so that
// 0 <= j < len(a)-1 and both halves shrink.
func hoareSweep(a []int, pivot int) int {
	i, j := -1, len(a)
	for {
		for i++; a[i] < pivot; i++ {
		}
		for j--; a[j] > pivot; j-- {
		}
		if i >= j {
			return j
		}
		a[i], a[j] = a[j], a[i]
	}
}
