package renderer

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// parallelFor runs fn(k) exactly once for every k in [0, n), spread over one
// worker per CPU, and returns after every call finished. With noParallel the
// loop runs sequentially on the calling goroutine.
func parallelFor(n int, noParallel bool, fn func(k int)) {
	if noParallel {
		for k := 0; k < n; k++ {
			fn(k)
		}
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				k := int(next.Add(1)) - 1
				if k >= n {
					return
				}
				fn(k)
			}
		}()
	}
	wg.Wait()
}
