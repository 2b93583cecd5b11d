package locking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type localEntry struct {
	sem     chan struct{}
	waiters int
}

// LocalLocker serializes goroutines of one process with a mutex per key.
// The ttl is ignored: a local holder cannot vanish without releasing.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	wait    time.Duration
}

// NewLocalLocker builds a locker that waits up to wait for a held key.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		entries: make(map[string]*localEntry),
		wait:    wait,
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.waiters++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.leave(key, e)
		return nil, ctx.Err()
	case <-timer.C:
		l.leave(key, e)
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, key)
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-e.sem
			l.leave(key, e)
		})
		return nil
	}, nil
}

// leave drops the entry once nobody holds or waits for it.
func (l *LocalLocker) leave(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.waiters--
	if e.waiters == 0 {
		delete(l.entries, key)
	}
}
