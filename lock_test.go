package mlfairy

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metadata.json.lock")

		lock, err := newFileLock(path, time.Second)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		if err := lock.Lock(); err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if err := lock.Unlock(); err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
	})

	t.Run("lock is reentrant per handle", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metadata.json.lock")

		lock, err := newFileLock(path, time.Second)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		defer lock.Unlock()

		if err := lock.Lock(); err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if err := lock.Lock(); err != nil {
			t.Errorf("second Lock() on held lock error = %v, want nil", err)
		}
	})

	t.Run("contended lock times out with ErrStorage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metadata.json.lock")

		holder, err := newFileLock(path, time.Second)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		if err := holder.Lock(); err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		defer holder.Unlock()

		waiter, err := newFileLock(path, 50*time.Millisecond)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		defer waiter.Unlock()

		if err := waiter.Lock(); !errors.Is(err, ErrStorage) {
			t.Errorf("contended Lock() error = %v, want ErrStorage", err)
		}
	})

	t.Run("unlock twice is safe", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "metadata.json.lock")

		lock, err := newFileLock(path, time.Second)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		if err := lock.Lock(); err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if err := lock.Unlock(); err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		if err := lock.Unlock(); err != nil {
			t.Errorf("second Unlock() error = %v, want nil", err)
		}
	})
}
