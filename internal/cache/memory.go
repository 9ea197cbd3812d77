package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process Store backed by go-cache
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates a memory store; expired items are purged every cleanup interval
func NewMemoryStore(defaultTTL, cleanup time.Duration) *MemoryStore {
	return &MemoryStore{items: gocache.New(defaultTTL, cleanup)}
}

// Get returns a live entry
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores value; a zero ttl uses the store default
func (m *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	m.items.Set(key, value, ttl)
	return nil
}

// Clear removes every entry
func (m *MemoryStore) Clear() error {
	m.items.Flush()
	return nil
}
