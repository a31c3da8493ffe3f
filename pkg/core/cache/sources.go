package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SourcesConfig holds configuration for the source cache
type SourcesConfig struct {
	TTL        time.Duration // default: 10 minutes
	MaxEntries int           // default: 256
}

// DefaultSourcesConfig returns default source cache configuration
func DefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{
		TTL:        10 * time.Minute,
		MaxEntries: 256,
	}
}

// SourceCache holds compile results keyed by SourceKey
type SourceCache[V any] struct {
	results *Cache[V]
}

// NewSourceCache creates a source cache; zero fields take their defaults
func NewSourceCache[V any](cfg SourcesConfig) *SourceCache[V] {
	def := DefaultSourcesConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &SourceCache[V]{
		results: New[V](Config{MaxItems: cfg.MaxEntries, TTL: cfg.TTL}),
	}
}

// SourceKey hashes a file name and its contents.
// The name is part of the key because locations embed it.
func SourceKey(file string, src []byte) string {
	h := sha256.New()
	h.Write([]byte(file))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key
func (c *SourceCache[V]) Get(key string) (V, bool) {
	return c.results.Get(key)
}

// Put caches a result for key
func (c *SourceCache[V]) Put(key string, result V) {
	c.results.Set(key, result)
}

// Invalidate drops the result for key
func (c *SourceCache[V]) Invalidate(key string) {
	c.results.Delete(key)
}

// Stats reports the counters in the shape of store statistics
func (c *SourceCache[V]) Stats() map[string]interface{} {
	s := c.results.Stats()
	return map[string]interface{}{
		"size":      int64(s.Size),
		"hits":      s.Hits,
		"misses":    s.Misses,
		"hit_rate":  s.HitRate(),
		"evictions": s.Evictions,
	}
}

// Clear drops every cached result
func (c *SourceCache[V]) Clear() {
	c.results.Clear()
}

// Close stops the background sweep
func (c *SourceCache[V]) Close() {
	c.results.Close()
}
