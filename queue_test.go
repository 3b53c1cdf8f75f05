package mlfairy

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSerialQueue(t *testing.T) {
	t.Run("preserves submission order", func(t *testing.T) {
		q := newSerialQueue()

		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup

		const jobs = 100
		wg.Add(jobs)
		for i := 0; i < jobs; i++ {
			i := i
			q.Async(func() {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				wg.Done()
			})
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		for i, got := range order {
			if got != i {
				t.Fatalf("order[%d] = %d, want %d", i, got, i)
			}
		}
	})

	t.Run("never runs two jobs concurrently", func(t *testing.T) {
		q := newSerialQueue()

		var running int32
		var overlapped int32
		var wg sync.WaitGroup

		wg.Add(50)
		for i := 0; i < 50; i++ {
			q.Async(func() {
				if atomic.AddInt32(&running, 1) > 1 {
					atomic.StoreInt32(&overlapped, 1)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				wg.Done()
			})
		}
		wg.Wait()

		if atomic.LoadInt32(&overlapped) != 0 {
			t.Error("two jobs ran concurrently on a serial queue")
		}
	})

	t.Run("idle queue accepts new work", func(t *testing.T) {
		// The drain goroutine exits when the queue empties; a later Async
		// must spawn a fresh one.
		q := newSerialQueue()

		done := make(chan struct{})
		q.Async(func() { close(done) })
		<-done

		time.Sleep(10 * time.Millisecond)

		again := make(chan struct{})
		q.Async(func() { close(again) })

		select {
		case <-again:
		case <-time.After(time.Second):
			t.Fatal("job submitted to idle queue never ran")
		}
	})
}

func TestExecutorFunc(t *testing.T) {
	var ran atomic.Bool
	var exec Executor = ExecutorFunc(func(fn func()) { fn() })

	exec.Async(func() { ran.Store(true) })

	if !ran.Load() {
		t.Error("ExecutorFunc did not invoke the function")
	}
}

func TestGoExecutor(t *testing.T) {
	done := make(chan struct{})
	GoExecutor.Async(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("GoExecutor never ran the function")
	}
}
