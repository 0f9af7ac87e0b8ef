// Package locker provides mutual exclusion keyed by an arbitrary string.
// Reservations hold the lock of one staff member across the conflict check and the insert,
// so requests for different staff members never wait on each other.
package locker

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned when a lock could not be obtained before the context ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a lock obtained from Locker.Lock. Calling it more than once is safe.
type Unlock func()

// Locker acquires exclusive access to a key.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// KeyedMutex is an in-process Locker. Entries are removed once no goroutine holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock blocks until the key is free or ctx is done.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLock{sem: make(chan struct{}, 1)}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(key, entry)
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			k.release(key, entry)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.locks)
}

func (k *KeyedMutex) release(key string, entry *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
}
