// Package store provides the key-value persistence capability backing the
// backup repository and the saved credential slot.
//
// Every entry is one atomic text blob under a string key. Mutations notify
// all registered subscribers with the affected key, so a listing held by one
// observer can refresh after a mutation from another — the same contract the
// browser storage event gave the original tool, made explicit.
package store

import (
	"fmt"
	"sync"

	"habitvault/internal/shared"
)

// Store is the injected persistence capability.
//
// Implementations must be safe for concurrent use. Get returns
// [shared.ErrNotFound] (wrapped) when the key is absent.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error

	// Keys returns all keys with the given prefix, in unspecified order.
	Keys(prefix string) ([]string, error)

	// Subscribe registers a change observer invoked with the affected key
	// after every successful Set or Delete. The returned function removes
	// the subscription; calling it more than once is a no-op.
	Subscribe(onChange func(key string)) (unsubscribe func())
}

// notifier implements subscriber registration and fan-out, shared by every
// Store implementation in this package.
type notifier struct {
	mu          sync.RWMutex
	subscribers map[string]func(key string)
}

func (n *notifier) Subscribe(onChange func(key string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subscribers == nil {
		n.subscribers = make(map[string]func(key string))
	}
	token := shared.GenerateID()
	n.subscribers[token] = onChange

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, token)
	}
}

// notify invokes every subscriber synchronously with the changed key.
func (n *notifier) notify(key string) {
	n.mu.RLock()
	callbacks := make([]func(string), 0, len(n.subscribers))
	for _, cb := range n.subscribers {
		callbacks = append(callbacks, cb)
	}
	n.mu.RUnlock()

	for _, cb := range callbacks {
		cb(key)
	}
}

// MemoryStore is an in-process Store for tests and ephemeral sessions.
type MemoryStore struct {
	notifier
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: key %q", shared.ErrNotFound, key)
	}
	return value, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()

	m.notify(key)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	m.notify(key)
	return nil
}

func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
