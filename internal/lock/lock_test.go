package lock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Exclusive(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json.lock")
	locker := NewLocker(path, 0)

	held, ok, err := locker.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryAcquire()
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while the lock is held")

	require.NoError(t, held.Release())

	again, ok, err := locker.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, again.Release())
}

func TestLocker_AcquireTimesOut(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json.lock")

	held, err := NewLocker(path, 0).Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	start := time.Now()
	_, err = NewLocker(path, 100*time.Millisecond).Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestLocker_AcquireWaitsForRelease(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json.lock")
	locker := NewLocker(path, 5*time.Second)

	unlock, err := locker.Lock(context.Background())
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		release, err := locker.Lock(context.Background())
		if err == nil {
			err = release()
		}
		acquired <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, unlock())

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("waiting locker never acquired the lock")
	}
}

func TestLocker_AcquireHonoursContext(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tasks.json.lock")

	held, err := NewLocker(path, 0).Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLocker(path, 0).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLock_ReleaseNil(t *testing.T) {
	t.Parallel()
	var l *FileLock
	assert.NoError(t, l.Release())
}
