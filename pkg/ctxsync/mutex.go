// Package ctxsync contains synchronization primitives whose blocking
// operations can be abandoned through a [context.Context].
package ctxsync

import (
	"context"
)

// Mutex is a mutual exclusion lock that can be waited on with a context. The
// zero value is not usable, use [NewMutex].
type Mutex struct {
	sem chan struct{}
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: make(chan struct{}, 1)}
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.sem <- struct{}{}
}

// LockWithContext blocks until the mutex is acquired or ctx is done. The
// mutex is held only if the returned error is nil.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	// a done context must win even if the lock is free
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.sem <- struct{}{}:
		return nil
	}
}

// TryLock acquires the mutex if it is free and reports whether it did.
func (m *Mutex) TryLock() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the mutex. It panics if the mutex is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.sem:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}

// Do runs fn while holding the mutex.
func (m *Mutex) Do(ctx context.Context, fn func() error) error {
	if err := m.LockWithContext(ctx); err != nil {
		return err
	}
	defer m.Unlock()
	return fn()
}
