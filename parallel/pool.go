package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs jobs on a fixed number of goroutines. A pool of one worker runs
// every job inline on the caller's goroutine.
type Pool struct {
	wg      sync.WaitGroup
	workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

func Start(numWorkers int) *Pool {
	numWorkers = Workers(numWorkers)

	pool := &Pool{
		workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Workers returns the number of goroutines the pool runs.
func (p *Pool) Workers() int {
	return p.workers
}

// Workers normalizes a requested worker count: anything below one means
// one worker per available CPU.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Rows splits the rows [0, height) into at most numWorkers contiguous bands
// and calls fn once per band. Bands run concurrently; Rows returns after all
// of them are done.
func Rows(height, numWorkers int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}

	numWorkers = min(Workers(numWorkers), height)
	if numWorkers == 1 {
		fn(0, height)
		return
	}

	band := (height + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		wg.Go(func() {
			fn(y0, y1)
		})
	}
	wg.Wait()
}
