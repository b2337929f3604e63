package core

import (
	"strings"
	"sync"
)

// keyedLocks serializes read-modify-write cycles per key. The remote
// store has no transactional isolation, so two concurrent updates to
// the same product or CRM row would otherwise race and lose one of the
// writes. All writers for a key must go through the same lock; keys
// are case-folded the same way row lookup is.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for key and returns its release func.
func (k *keyedLocks) acquire(key string) func() {
	key = strings.ToLower(strings.TrimSpace(key))
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}
