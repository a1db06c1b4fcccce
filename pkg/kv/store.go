// Package kv provides a generic thread-safe memo table.
package kv

import "sync"

// Memo caches computed values by key until they are forgotten.
type Memo[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates an empty memo table.
func New[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{data: make(map[K]V)}
}

// Get returns the cached value of key.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// GetOrCompute returns the cached value of key, computing and caching it
// with fn when missing. fn runs without the lock held; when two callers race
// the first stored value wins.
func (m *Memo[K, V]) GetOrCompute(key K, fn func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}

	v := fn()

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.data[key]; ok {
		return cached
	}
	m.data[key] = v
	return v
}

// Forget drops keys and returns how many of them were cached.
func (m *Memo[K, V]) Forget(keys ...K) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return n
}

// Len returns the number of cached values.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
