//go:build windows

package mlfairy

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// Locker serializes metadata writes across processes sharing a data
// directory. One lock guards one metadata record.
type Locker interface {
	// Lock acquires the lock, waiting up to the configured timeout.
	Lock() error

	// Unlock releases the lock and the underlying handle. Safe to call
	// more than once.
	Unlock() error
}

// fileLock guards a metadata record with LockFileEx() mandatory locking.
type fileLock struct {
	file    *os.File
	timeout time.Duration
	locked  bool
}

// newFileLock opens the lock file guarding a metadata record, creating it
// if needed.
func newFileLock(path string, timeout time.Duration) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening lock file: %v", ErrStorage, err)
	}
	return &fileLock{file: file, timeout: timeout}, nil
}

// Lock polls for the exclusive lock with backoff until the timeout
// expires. LOCKFILE_FAIL_IMMEDIATELY keeps each attempt non-blocking.
func (l *fileLock) Lock() error {
	if l.locked {
		return nil
	}

	deadline := time.Now().Add(l.timeout)
	sleep := 10 * time.Millisecond
	for {
		err := windows.LockFileEx(
			windows.Handle(l.file.Fd()),
			windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
			0,
			1, 0,
			&windows.Overlapped{},
		)
		if err == nil {
			l.locked = true
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: metadata lock not acquired within %v", ErrStorage, l.timeout)
		}
		time.Sleep(sleep)
		if sleep < 100*time.Millisecond {
			sleep *= 2
		}
	}
}

// Unlock releases the lock and closes the handle.
func (l *fileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	var err error
	if l.locked {
		err = windows.UnlockFileEx(
			windows.Handle(l.file.Fd()),
			0,
			1, 0,
			&windows.Overlapped{},
		)
	}
	l.file.Close()
	l.file = nil
	l.locked = false

	if err != nil {
		return fmt.Errorf("%w: releasing metadata lock: %v", ErrStorage, err)
	}
	return nil
}
