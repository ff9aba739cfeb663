package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLocker struct{ Local }

func (*failingLocker) Acquire(context.Context, string, time.Duration) (string, bool, error) {
	return "", false, errors.New("backend down")
}

func TestProjectKey(t *testing.T) {
	assert.Equal(t, "project:abc123", ProjectKey("abc123"))
}

func TestWithLock_RunsAndReleases(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	ran := false
	err := WithLock(ctx, l, "project:a", time.Minute, time.Second, func(ctx context.Context) error {
		ran = true
		_, acquired, err := l.Acquire(ctx, "project:a", time.Minute)
		require.NoError(t, err)
		assert.False(t, acquired, "lock should be held inside fn")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	_, acquired, err := l.Acquire(ctx, "project:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired, "lock should be released after fn")
}

func TestWithLock_PropagatesError(t *testing.T) {
	l := NewLocal()
	want := errors.New("boom")

	err := WithLock(context.Background(), l, "n", time.Minute, time.Second, func(context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)

	_, acquired, _ := l.Acquire(context.Background(), "n", time.Minute)
	assert.True(t, acquired, "lock should be released after a failing fn")
}

func TestWithLock_Busy(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	_, _, err := l.Acquire(ctx, "project:a", time.Minute)
	require.NoError(t, err)

	called := false
	err = WithLock(ctx, l, "project:a", time.Minute, 120*time.Millisecond, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrProjectBusy)
	assert.False(t, called)
}

func TestWithLock_WaitsForRelease(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	token, _, err := l.Acquire(ctx, "project:a", time.Minute)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = l.Release(ctx, "project:a", token)
	}()

	err = WithLock(ctx, l, "project:a", time.Minute, 2*time.Second, func(context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestWithLock_ContextCancelled(t *testing.T) {
	l := NewLocal()
	_, _, _ = l.Acquire(context.Background(), "n", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := WithLock(ctx, l, "n", time.Minute, 5*time.Second, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLock_AcquireError(t *testing.T) {
	err := WithLock(context.Background(), &failingLocker{}, "n", time.Minute, time.Second, func(context.Context) error {
		t.Fatal("fn should not run")
		return nil
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProjectBusy)
}

func TestWithLock_MutualExclusion(t *testing.T) {
	l := NewLocal()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(context.Background(), l, "project:x", time.Minute, 5*time.Second, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestWithLock_ExtendsWhileRunning(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()
	ttl := 150 * time.Millisecond

	err := WithLock(ctx, l, "project:a", ttl, time.Second, func(ctx context.Context) error {
		time.Sleep(3 * ttl)
		_, acquired, err := l.Acquire(ctx, "project:a", ttl)
		require.NoError(t, err)
		assert.False(t, acquired, "lock should outlive its ttl while fn runs")
		return ctx.Err()
	})
	require.NoError(t, err)

	_, acquired, err := l.Acquire(ctx, "project:a", ttl)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestWithLock_LockLost(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	err := WithLock(ctx, l, "project:a", 90*time.Millisecond, time.Second, func(ctx context.Context) error {
		// Another holder takes over, as if the lock had expired.
		l.mu.Lock()
		l.held["project:a"] = localHold{token: "other", expires: time.Now().Add(time.Minute)}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return errors.New("context was not cancelled")
		}
	})
	assert.ErrorIs(t, err, ErrLockLost)
	assert.ErrorIs(t, err, context.Canceled)

	_, acquired, err := l.Acquire(ctx, "project:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired, "releasing a lost lock must not free the new holder")
}
