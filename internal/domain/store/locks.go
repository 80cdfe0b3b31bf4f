// internal/domain/store/locks.go
package store

import (
	"sort"
	"sync"
)

// keyedLocks sequences mutations per product id. Operations on the same
// key run one at a time in arrival order; operations on different keys
// do not block each other.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the lock for one product id
func (k *keyedLocks) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the lock for one product id
func (k *keyedLocks) Unlock(key string) {
	k.get(key).Unlock()
}

// LockMany acquires locks for a set of product ids in sorted order, so
// two overlapping bulk operations cannot deadlock each other
func (k *keyedLocks) LockMany(keys []string) []string {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)
	for _, key := range sorted {
		k.Lock(key)
	}
	return sorted
}

// UnlockMany releases locks previously acquired with LockMany
func (k *keyedLocks) UnlockMany(keys []string) {
	for _, key := range keys {
		k.Unlock(key)
	}
}
