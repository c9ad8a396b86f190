// Package cache provides caching mechanisms for API responses
// to reduce repeated calls to the geocoder and search services.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTLCache is a thread-safe, size-bounded cache whose entries expire after a
// fixed TTL. When full, the least recently used entry is evicted.
type TTLCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
	ttl time.Duration
}

// NewTTLCache creates a cache holding at most maxItems entries for ttl each.
// A maxItems of 0 means unbounded; a ttl of 0 means entries never expire.
func NewTTLCache[K comparable, V any](ttl time.Duration, maxItems int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		lru: expirable.NewLRU[K, V](maxItems, nil, ttl),
		ttl: ttl,
	}
}

// Set adds an item to the cache, replacing any existing value for key.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Get retrieves an item from the cache.
// Returns the item and a bool indicating if the item was found.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Delete removes an item from the cache.
func (c *TTLCache[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

// Count returns the number of unexpired items in the cache.
func (c *TTLCache[K, V]) Count() int {
	return c.lru.Len()
}

// Clear removes all items from the cache.
func (c *TTLCache[K, V]) Clear() {
	c.lru.Purge()
}

// TTL returns the configured time to live.
func (c *TTLCache[K, V]) TTL() time.Duration {
	return c.ttl
}
