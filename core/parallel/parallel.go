// Package parallel splits index ranges across goroutines.
//
// Callers must only write to slots owned by their own [start, end) range;
// under that rule the result does not depend on scheduling.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the item count below which work stays on the
// calling goroutine.
const DefaultThreshold = 256

// Parallelize divides items into one contiguous chunk per available CPU
// and runs fn(start, end) for each chunk concurrently. It returns once
// every chunk has finished.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when items does
// not exceed threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
