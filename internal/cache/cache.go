// Package cache keeps fetched page bodies between local runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Store is a byte store with per-entry expiry
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Clear() error
}

// PageKey derives the cache key of a page body.
// The base URL is part of the key so two sites never share entries.
func PageKey(baseURL string, id int64) string {
	hash := sha256.Sum256([]byte(baseURL + "\x00" + strconv.FormatInt(id, 10)))
	return "decisync-v1-" + hex.EncodeToString(hash[:])
}
