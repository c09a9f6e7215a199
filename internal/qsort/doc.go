// Package qsort implements the quicksort variants the benchmark harness times.
//
// Three partition schemes are provided: Lomuto (last element pivot), Hoare
// (first element pivot) and median-of-three (Hoare sweep around the median
// of the first, middle and last elements). LomutoInsertion is Lomuto with
// subarrays of InsertionCutoff elements or fewer finished by insertion sort;
// it is only used when named in the config. Sort runs sequentially;
// ParallelSort forks subarrays larger than a threshold onto an errgroup with a
// bounded number of goroutines and sorts the rest inline.
package qsort
