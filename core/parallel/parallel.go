// Package parallel splits index ranges across goroutines.
//
// The correlation analyzer uses it to scan rows of the upper triangle on wide
// feature tables. Each worker owns a disjoint [start, end) range, so callers
// can write results into preallocated per-index slots without locking.
package parallel

import (
	"runtime"
	"sync"
)

// Workers returns the number of goroutines used for items when at most
// limit workers are allowed. limit <= 0 means runtime.NumCPU().
func Workers(items, limit int) int {
	if items <= 0 {
		return 0
	}
	n := limit
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > items {
		n = items
	}
	return n
}

// Parallelize divides [0, items) into contiguous chunks, one per worker, and
// runs fn(start, end) for each chunk concurrently. It returns after every
// chunk has finished.
func Parallelize(items, limit int, fn func(start, end int)) {
	numWorkers := Workers(items, limit)
	if numWorkers == 0 {
		return
	}

	// Ceiling division so the last chunk absorbs the remainder.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items <= threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold, limit int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, limit, fn)
}
