package cache

import (
	"errors"
	"time"
)

// Layered reads through a fast store to a persistent one
type Layered struct {
	memory Store
	disk   Store
}

// NewLayered creates a memory-over-disk store
func NewLayered(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *Layered {
	return &Layered{
		memory: NewMemoryStore(memoryTTL, 10*time.Minute),
		disk:   NewDiskStore(diskDir, diskTTL),
	}
}

// Get checks memory first and promotes disk hits
func (l *Layered) Get(key string) ([]byte, bool) {
	if v, ok := l.memory.Get(key); ok {
		return v, true
	}
	if v, ok := l.disk.Get(key); ok {
		_ = l.memory.Set(key, v, 0)
		return v, true
	}
	return nil, false
}

// Set writes both layers
func (l *Layered) Set(key string, value []byte, ttl time.Duration) error {
	if err := l.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return l.disk.Set(key, value, ttl)
}

// Clear empties both layers
func (l *Layered) Clear() error {
	return errors.Join(l.memory.Clear(), l.disk.Clear())
}
