package datasource

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache stores raw dataset payloads by name.
type Cache interface {
	Get(name string) ([]byte, bool)
	Set(name string, data []byte)
	Delete(name string)
	Flush()
	Len() int
}

// MemoryCache is an in-process Cache backed by go-cache.
type MemoryCache struct {
	c *cache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl. A ttl of zero
// keeps entries until they are deleted or flushed. A positive cleanup
// interval starts a background janitor that purges expired entries.
func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryCache{c: cache.New(ttl, cleanupInterval)}
}

func (m *MemoryCache) Get(name string) ([]byte, bool) {
	v, ok := m.c.Get(name)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (m *MemoryCache) Set(name string, data []byte) {
	m.c.SetDefault(name, data)
}

func (m *MemoryCache) Delete(name string) {
	m.c.Delete(name)
}

func (m *MemoryCache) Flush() {
	m.c.Flush()
}

// Len counts entries, including expired ones not yet purged.
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}
