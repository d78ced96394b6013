package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryTTL is the advisory expiry window for local entries. It is
// deliberately short and independent of the TTL the shared tier uses.
const DefaultMemoryTTL = 60 * time.Second

// DefaultMemoryCapacity bounds the local tier's entry count.
const DefaultMemoryCapacity = 1000

// MemoryCache is the process-local cache tier: a bounded LRU with a fixed
// time-based expiry window. It is always available and never returns an
// infrastructure error. Eviction happens inside the LRU's own short
// critical section and never blocks concurrent readers beyond it.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
	// mu serializes concurrent DeletePattern calls so their key-snapshot
	// sweeps don't interleave. Single-key operations rely on the LRU's own
	// internal locking.
	mu sync.Mutex
}

// NewMemoryCache creates a local cache holding at most capacity entries,
// each expiring ttl after it was written. Non-positive arguments fall back
// to the package defaults.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, []byte](capacity, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to prevent mutation of the cached slice.
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Set stores a value. The ttl argument is ignored: local entries always use
// the cache-wide advisory window, which is decoupled from the explicit TTL
// the shared tier receives.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	c.lru.Add(key, cp)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// DeletePattern removes every key containing pattern as a substring.
func (c *MemoryCache) DeletePattern(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.lru.Keys() {
		if strings.Contains(key, pattern) {
			if c.lru.Remove(key) {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *MemoryCache) Ping(_ context.Context) error { return nil }

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// Len reports the number of live entries. Used by tests and health checks.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
