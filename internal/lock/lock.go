// Package lock provides named, TTL-bounded locks used to serialize chunk
// resets for a project.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"docuchunk/internal/contextutil"
)

var (
	// ErrProjectBusy is returned when a lock could not be acquired before the wait expired.
	ErrProjectBusy = errors.New("project is busy")
	// ErrNotHeld is returned by Extend when the token no longer owns the lock.
	ErrNotHeld = errors.New("lock not held")
	// ErrLockLost is returned by WithLock when the lock expired or was taken
	// over while fn was still running.
	ErrLockLost = errors.New("lock lost while running")
)

// DefaultPollInterval is how often WithLock retries a held lock.
const DefaultPollInterval = 50 * time.Millisecond

// Locker acquires and releases named locks. Every successful Acquire returns
// a token unique to that acquisition; Release and Extend only act on the lock
// while that token still owns it.
type Locker interface {
	// Acquire attempts to take the named lock for ttl. It returns false if the
	// lock is held by someone else.
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, acquired bool, err error)
	// Release drops the named lock if token owns it. Releasing a lock that is
	// not held, or held under another token, is not an error.
	Release(ctx context.Context, name, token string) error
	// Extend resets the lock's TTL. It returns ErrNotHeld if token no longer owns it.
	Extend(ctx context.Context, name, token string, ttl time.Duration) error
	// Ping checks the lock backend.
	Ping(ctx context.Context) error
}

// ProjectKey returns the lock name for a project.
func ProjectKey(projectID string) string {
	return "project:" + projectID
}

// WithLock runs fn while holding the named lock. It retries a held lock until
// wait elapses and then returns ErrProjectBusy. While fn runs the lock is
// extended every ttl/3; if an extension finds the lock gone, fn's context is
// cancelled and the error wraps ErrLockLost. The lock is released after fn
// returns, even if ctx has been cancelled.
func WithLock(ctx context.Context, l Locker, name string, ttl, wait time.Duration, fn func(ctx context.Context) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	var token string
	deadline := time.Now().Add(wait)
	for {
		t, acquired, err := l.Acquire(ctx, name, ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if acquired {
			token = t
			break
		}
		if !time.Now().Before(deadline) {
			logger.WarnContext(ctx, "lock wait expired", "lock", name, "wait", wait)
			return fmt.Errorf("%w: %s", ErrProjectBusy, name)
		}

		timer := time.NewTimer(DefaultPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.Release(releaseCtx, name, token); err != nil {
			logger.ErrorContext(ctx, "failed to release lock", "lock", name, "error", err)
		}
	}()

	fnCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		keepAlive(fnCtx, l, name, token, ttl, stop, cancel)
	}()

	err := fn(fnCtx)
	close(stop)
	wg.Wait()

	if err != nil && errors.Is(context.Cause(fnCtx), ErrLockLost) {
		return fmt.Errorf("%w: %s: %w", ErrLockLost, name, err)
	}
	return err
}

// keepAlive extends the lock until stop is closed. Losing the lock cancels
// the holder's context with ErrLockLost; transient backend errors are logged
// and retried on the next tick.
func keepAlive(ctx context.Context, l Locker, name, token string, ttl time.Duration, stop <-chan struct{}, cancel context.CancelCauseFunc) {
	logger := contextutil.LoggerFromContext(ctx)

	interval := ttl / 3
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := l.Extend(ctx, name, token, ttl)
			if errors.Is(err, ErrNotHeld) {
				logger.ErrorContext(ctx, "lock lost while held", "lock", name)
				cancel(ErrLockLost)
				return
			}
			if err != nil {
				logger.WarnContext(ctx, "failed to extend lock", "lock", name, "error", err)
			}
		}
	}
}
