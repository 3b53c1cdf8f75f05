package mlfairy

import (
	"sync"
	"testing"
)

func TestGuarded(t *testing.T) {
	t.Run("write then read", func(t *testing.T) {
		g := newGuarded(0)

		g.write(func(v *int) { *v = 42 })

		var got int
		g.read(func(v int) { got = v })
		if got != 42 {
			t.Errorf("read %d, want 42", got)
		}
	})

	t.Run("writes are serialized", func(t *testing.T) {
		// A non-atomic increment under write is only safe if write bodies
		// never overlap.
		g := newGuarded(0)

		const goroutines = 50
		const increments = 200

		var wg sync.WaitGroup
		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < increments; j++ {
					g.write(func(v *int) { *v++ })
				}
			}()
		}
		wg.Wait()

		var got int
		g.read(func(v int) { got = v })
		if got != goroutines*increments {
			t.Errorf("counter = %d, want %d", got, goroutines*increments)
		}
	})

	t.Run("read and write bodies never overlap", func(t *testing.T) {
		type record struct {
			a, b int // invariant: a == b
		}
		g := newGuarded(record{})

		var wg sync.WaitGroup
		torn := make(chan struct{}, 1)

		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				g.write(func(v *record) {
					v.a++
					v.b++
				})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				g.read(func(v record) {
					if v.a != v.b {
						select {
						case torn <- struct{}{}:
						default:
						}
					}
				})
			}
		}()
		wg.Wait()

		select {
		case <-torn:
			t.Error("observed torn state, read overlapped a write")
		default:
		}
	})
}
