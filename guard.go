package mlfairy

import "sync"

// guarded wraps a value behind a single mutex. It is the only
// synchronization primitive for task state: every read and write of the
// wrapped value goes through read or write, which fully serialize with each
// other across all goroutines.
//
// Callers must not call read or write recursively from within a body; the
// mutex is not reentrant.
type guarded[T any] struct {
	mu    sync.Mutex
	value T
}

// newGuarded wraps v.
func newGuarded[T any](v T) *guarded[T] {
	return &guarded[T]{value: v}
}

// read executes fn with exclusive access to the wrapped value. fn must
// observe only; results are returned through closure capture.
func (g *guarded[T]) read(fn func(v T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.value)
}

// write executes fn with exclusive mutation access to the wrapped value.
func (g *guarded[T]) write(fn func(v *T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.value)
}
