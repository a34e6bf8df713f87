package cache

import "time"

// LayeredCache stacks a fast in-memory cache over a persistent disk
// cache. Reads probe layers in order and promote hits upward; writes
// go through to every layer.
type LayeredCache struct {
	layers []Cache
}

// NewLayeredCache builds a memory-over-disk cache for model responses.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		layers: []Cache{
			NewMemoryCache(memoryTTL, 10*time.Minute),
			NewDiskCache(diskDir, diskTTL),
		},
	}
}

// Get probes each layer in order. A hit in a lower layer is copied
// into the layers above it so the next lookup stays in memory.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Get(key)
		if !found {
			continue
		}
		for j := 0; j < i; j++ {
			c.layers[j].Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set writes through to every layer, stopping at the first failure.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	for _, layer := range c.layers {
		if err := layer.Set(key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the key from every layer.
func (c *LayeredCache) Delete(key string) error {
	for _, layer := range c.layers {
		layer.Delete(key)
	}
	return nil
}

// Clear empties every layer.
func (c *LayeredCache) Clear() error {
	for _, layer := range c.layers {
		layer.Clear()
	}
	return nil
}
