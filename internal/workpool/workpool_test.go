package workpool

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestPoolLimitsConcurrency(t *testing.T) {
	const threads = 3
	p := New(threads)

	var current int32
	var maxSeen int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		p.Go(&wg, func() {
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			atomic.AddInt32(&current, -1)
		})
	}
	wg.Wait()

	if maxSeen > threads {
		t.Errorf("observed concurrency %d, want <= %d", maxSeen, threads)
	}
}

func TestPoolRunsEveryTask(t *testing.T) {
	p := New(2)
	var wg sync.WaitGroup
	var count int32
	for i := 0; i < 50; i++ {
		p.Go(&wg, func() { atomic.AddInt32(&count, 1) })
	}
	wg.Wait()
	if count != 50 {
		t.Errorf("ran %d tasks, want 50", count)
	}
}
