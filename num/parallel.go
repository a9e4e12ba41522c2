package num

import (
	"runtime"
	"sync"
)

// ParallelThreshold is the minimum amount of work (iterations times
// per-iteration size) for which For fans out to the worker pool.
// Smaller regions run sequentially on the calling goroutine.
var ParallelThreshold = 1 << 15

// workRequest is one chunk of a parallel-for region.
type workRequest struct {
	lo, hi int
	fn     func(lo, hi int)
	wg     *sync.WaitGroup
}

var (
	workers   int
	work      chan *workRequest
	startOnce sync.Once
)

// startWorker starts a worker. The worker quits when the work channel
// is closed.
func startWorker(work chan *workRequest) {
	go func() {
		for {
			req, ok := <-work
			if !ok {
				return
			}
			req.fn(req.lo, req.hi)
			req.wg.Done()
		}
	}()
}

func startPool() {
	workers = runtime.GOMAXPROCS(0)
	work = make(chan *workRequest, workers*4)
	for i := 0; i < workers; i++ {
		startWorker(work)
	}
}

// For calls fn on disjoint chunks that together cover [0,n). Each
// iteration must write only its own output element. size is the cost
// of a single iteration and is used to decide whether the region is
// large enough to be worth splitting.
func For(n, size int, fn func(lo, hi int)) {
	if n <= 1 || n*size < ParallelThreshold || runtime.GOMAXPROCS(0) < 2 {
		fn(0, n)
		return
	}
	startOnce.Do(startPool)
	chunks := min(n, workers)
	step := (n + chunks - 1) / chunks
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += step {
		hi := min(lo+step, n)
		wg.Add(1)
		work <- &workRequest{lo: lo, hi: hi, fn: fn, wg: &wg}
	}
	wg.Wait()
}
