// Package cache keeps run snapshots of datastore reads in memory and on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key returns the cache key of one snapshot kind for a run name
func Key(run, kind string) string {
	hash := sha256.Sum256([]byte(run))
	return "fibs-v1-" + hex.EncodeToString(hash[:8]) + "-" + kind
}
