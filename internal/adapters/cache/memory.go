package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local Cache on go-cache. Values are stored
// encoded so callers never share mutable state.
type MemoryCache struct {
	c   *gocache.Cache
	ttl time.Duration
}

// NewMemoryCache creates a cache whose entries default to ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{c: gocache.New(ttl, ttl*2), ttl: ttl}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	raw, found := m.c.Get(key)
	if !found {
		return false, nil
	}
	b, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache %s: unexpected %T", key, raw)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, key, err)
	}
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.c.Set(key, b, ttl)
	return nil
}

// Delete implements Cache.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int { return m.c.ItemCount() }

// Close implements Cache.
func (m *MemoryCache) Close() error {
	m.c.Flush()
	return nil
}
