// Package cache provides layered memory/disk caching for gateway
// responses, so re-running the same document does not repeat model calls.
package cache

import "time"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}
