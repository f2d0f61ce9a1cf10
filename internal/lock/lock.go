// Package lock provides an advisory file lock held around task store operations.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired in time.
var ErrTimeout = errors.New("timed out waiting for task file lock")

const pollInterval = 25 * time.Millisecond

// FileLock is an exclusive flock on a lock file.
type FileLock struct {
	file *os.File
}

// Locker acquires FileLocks on a fixed path.
type Locker struct {
	path    string
	timeout time.Duration
}

// NewLocker creates a locker for the lock file at path. A zero timeout waits
// until ctx is done.
func NewLocker(path string, timeout time.Duration) *Locker {
	return &Locker{path: path, timeout: timeout}
}

// Path returns the lock file path.
func (l *Locker) Path() string {
	return l.path
}

// Lock acquires the lock and returns the function releasing it.
func (l *Locker) Lock(ctx context.Context) (func() error, error) {
	fl, err := l.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return fl.Release, nil
}

// Acquire blocks until the lock is held, the timeout passes, or ctx is done.
func (l *Locker) Acquire(ctx context.Context) (*FileLock, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	for {
		fl, ok, err := l.TryAcquire()
		if err != nil {
			return nil, err
		}
		if ok {
			return fl, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrTimeout, l.path)
			}
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *Locker) TryAcquire() (*FileLock, bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, false, fmt.Errorf("create lock dir: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lock %s: %w", filepath.Base(l.path), err)
	}
	return &FileLock{file: file}, true, nil
}

// Release releases the lock.
func (l *FileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
