package mlfairy

import "sync"

// Executor runs a function asynchronously. Subscribers choose the Executor
// their completion callback is delivered on; the task never invokes caller
// code on its own work queues beyond handing it to the Executor.
type Executor interface {
	// Async schedules fn to run and returns without waiting for it.
	Async(fn func())
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(fn func())

// Async implements Executor.
func (f ExecutorFunc) Async(fn func()) { f(fn) }

// GoExecutor runs each function on its own goroutine. This is the simplest
// delivery choice for callers with no ordering requirements of their own.
var GoExecutor Executor = ExecutorFunc(func(fn func()) { go fn() })

// serialQueue executes submitted functions one at a time in submission
// order. A drain goroutine is spawned on demand and exits when the queue
// empties, so an idle queue holds no resources and never needs an explicit
// shutdown.
type serialQueue struct {
	mu      sync.Mutex
	jobs    []func()
	running bool
}

// newSerialQueue creates an empty queue.
func newSerialQueue() *serialQueue {
	return &serialQueue{}
}

// Async implements Executor. fn runs after every previously submitted
// function has returned.
func (q *serialQueue) Async(fn func()) {
	q.mu.Lock()
	q.jobs = append(q.jobs, fn)
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()
}

// drain runs queued functions in FIFO order until the queue is empty.
func (q *serialQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		fn := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		fn()
	}
}
