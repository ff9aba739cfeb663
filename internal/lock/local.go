package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Locker = (*Local)(nil)

type localHold struct {
	token   string
	expires time.Time
}

// Local is an in-process Locker. It only coordinates goroutines of a single
// process; use Redis when several instances share a store.
type Local struct {
	mu    sync.Mutex
	held  map[string]localHold
	clock func() time.Time
}

// NewLocal creates an empty in-process locker.
func NewLocal() *Local {
	return &Local{
		held:  make(map[string]localHold),
		clock: time.Now,
	}
}

// Acquire takes the lock if it is free or its previous holder's TTL has run out.
func (l *Local) Acquire(_ context.Context, name string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[name]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[name] = localHold{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (l *Local) Release(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.held[name]; ok && h.token == token {
		delete(l.held, name)
	}
	return nil
}

// Extend pushes the expiry to now+ttl. An expired hold that nobody has taken
// over yet is still owned by its token.
func (l *Local) Extend(_ context.Context, name, token string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.held[name]
	if !ok || h.token != token {
		return fmt.Errorf("%w: %s", ErrNotHeld, name)
	}
	h.expires = l.clock().Add(ttl)
	l.held[name] = h
	return nil
}

// Ping always succeeds.
func (l *Local) Ping(context.Context) error {
	return nil
}
