package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a sync.Mutex-guarded in-process map implementing
// LocalCache and Locker. It is a plain stdlib implementation rather than
// an adapter over a third-party library; see DESIGN.md.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]*sync.Mutex
}

type memoryEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), locks: make(map[string]*sync.Mutex)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	c.entries[key] = memoryEntry{value: value, expires: expires}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

// Lock acquires a process-local mutual-exclusion primitive for key,
// scoped to the lifetime of fn. It backs the local path of package
// ratelimit, mirroring the distributed path's WithLock contract without
// requiring a DistributedStore.
func (c *MemoryCache) Lock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l := c.keyMutex(key)
	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

func (c *MemoryCache) keyMutex(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}
