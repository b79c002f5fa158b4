// Package cache memoizes rebuild results keyed by a content fingerprint of
// the request that produced them.
package cache

import (
	"sync"
	"time"

	"github.com/FocuswithJustin/WikiruKit/core/cas"
)

// now is replaced in tests.
var now = time.Now

type entry[V any] struct {
	value   V
	expires time.Time
	added   uint64
}

// TTLCache is a thread-safe cache whose entries expire individually.
// When full, the oldest entry is evicted.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	data    map[K]entry[V]
	ttl     time.Duration
	max     int
	counter uint64
}

// New creates a cache holding at most maxEntries entries for ttl each.
// maxEntries <= 0 means unbounded.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]entry[V]),
		ttl:  ttl,
		max:  maxEntries,
	}
}

// Get returns the value for key if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || !now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its expiry.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && c.max > 0 && len(c.data) >= c.max {
		c.evictLocked()
	}
	c.counter++
	c.data[key] = entry[V]{value: value, expires: now().Add(c.ttl), added: c.counter}
}

// evictLocked drops expired entries, or the oldest one if none expired.
// MUST be called with the write lock held.
func (c *TTLCache[K, V]) evictLocked() {
	t := now()
	var (
		oldestKey K
		oldest    uint64
		found     bool
		dropped   bool
	)
	for k, e := range c.data {
		if !t.Before(e.expires) {
			delete(c.data, k)
			dropped = true
			continue
		}
		if !found || e.added < oldest {
			oldestKey, oldest, found = k, e.added, true
		}
	}
	if !dropped && found {
		delete(c.data, oldestKey)
	}
}

// Invalidate clears all cached data.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]entry[V])
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Key fingerprints an ordered list of request parts. Parts are length
// prefixed so that ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	var buf []byte
	for _, p := range parts {
		n := len(p)
		buf = append(buf, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		buf = append(buf, p...)
	}
	return cas.Hash(buf)
}
