package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a process-local TTL map. Nothing is written to disk; it exists to
// avoid repeating identical lookups while the program runs.
type Cache[V any] struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]*entry[V]
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry[V]),
	}
}

// WithClock replaces the time source. Tests use it to expire entries.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.now = now
	return c
}

// Key normalizes a lookup string so that case and surrounding space do not
// produce separate entries.
func Key(raw string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:12])
}

func (c *Cache[V]) Get(key string) (V, error) {
	var zero V

	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return zero, ErrCacheMiss
	}

	if !e.expiresAt.After(c.now()) {
		c.mu.Lock()
		// a Set may have replaced the entry since the read lock was released
		if current, ok := c.entries[key]; ok && !current.expiresAt.After(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, ErrCacheExpired
	}

	return e.value, nil
}

func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	now := c.now()
	c.mu.Lock()
	c.entries[key] = &entry[V]{
		value:     value,
		expiresAt: now.Add(c.ttl),
	}
	c.mu.Unlock()
}

// Prune drops expired entries and reports how many were removed.
func (c *Cache[V]) Prune() int {
	now := c.now()
	pruned := 0

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, key)
			pruned++
		}
	}

	return pruned
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
