package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config holds cache configuration
type Config struct {
	// MaxItems bounds the cache; the least recently used entry goes first
	MaxItems int
	// TTL applies to Set; zero keeps entries until evicted
	TTL time.Duration
	// SweepInterval controls how often expired entries are dropped
	SweepInterval time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:      1024,
		TTL:           5 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Stats is a snapshot of cache counters
type Stats struct {
	Size      int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits as a percentage of lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

type item[V any] struct {
	key     string
	value   V
	expires time.Time
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Cache is a size-bounded LRU cache with per-entry expiry.
// It is safe for concurrent use.
type Cache[V any] struct {
	mu    sync.Mutex
	order *list.List // front is most recently used
	index map[string]*list.Element
	cfg   Config
	stats Stats

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and starts its sweeper. Call Close to stop it.
func New[V any](cfg Config) *Cache[V] {
	def := DefaultConfig()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}

	c := &Cache[V]{
		order: list.New(),
		index: make(map[string]*list.Element),
		cfg:   cfg,
		done:  make(chan struct{}),
	}
	go c.sweep(cfg.SweepInterval)
	return c
}

// Get returns the value for key and marks it as recently used
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	it := el.Value.(*item[V])
	if it.expired(time.Now()) {
		c.remove(el)
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return it.value, true
}

// Set stores value under key with the configured TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.cfg.TTL)
}

// SetWithTTL stores value under key; ttl <= 0 never expires
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		c.order.MoveToFront(el)
		return
	}

	c.index[key] = c.order.PushFront(&item[V]{key: key, value: value, expires: expires})
	for c.order.Len() > c.cfg.MaxItems {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}
}

// Delete drops key if present
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
}

// Clear drops every entry; counters are kept
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[string]*list.Element)
}

// Len returns the number of stored entries, expired or not
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the counters
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}

// Close stops the sweeper. The cache stays usable.
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// remove must be called with mu held
func (c *Cache[V]) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.index, el.Value.(*item[V]).key)
}

func (c *Cache[V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for el := c.order.Back(); el != nil; {
				prev := el.Prev()
				if el.Value.(*item[V]).expired(now) {
					c.remove(el)
				}
				el = prev
			}
			c.mu.Unlock()
		}
	}
}
