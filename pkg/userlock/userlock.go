// Package userlock provides per-key mutual exclusion for serializing
// writes to a single user's progress record. A completion is a
// load-mutate-save sequence against the store; without exclusion two
// concurrent completions for the same user could both load the
// pre-update record and one save would clobber the other.
//
// Locks for different keys are independent, so writes for different
// users never contend. Reads do not take locks.
// No external dependencies - uses only standard library.
package userlock

import "sync"

// KeyedMutex is a set of mutexes addressed by string key.
// Entries are reference-counted and removed when the last holder
// releases them, so the map does not grow with the user base.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*entry),
	}
}

// Lock acquires the mutex for the given key, blocking until it is free.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for the given key.
// Unlocking a key that was never locked panics, same as sync.Mutex.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("userlock: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

// Do runs fn while holding the lock for key.
func (k *KeyedMutex) Do(key string, fn func()) {
	k.Lock(key)
	defer k.Unlock(key)
	fn()
}

// Len returns the number of currently tracked keys. Intended for
// metrics and tests.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
