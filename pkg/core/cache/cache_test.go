package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[int](DefaultConfig())
	defer c.Close()

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if v, ok := c.Get("missing"); ok || v != 0 {
		t.Errorf("Get(missing) = %v, %v, want zero miss", v, ok)
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate() != 50 || s.Size != 1 {
		t.Errorf("Stats() = %+v, rate %v", s, s.HitRate())
	}
}

func TestStats_HitRateEmpty(t *testing.T) {
	if got := (Stats{}).HitRate(); got != 0 {
		t.Errorf("HitRate() = %v, want 0", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New[string](DefaultConfig())
	defer c.Close()

	c.SetWithTTL("short", "x", time.Millisecond)
	c.SetWithTTL("forever", "y", 0)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expired entry should miss")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("entry without TTL should never expire")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](Config{MaxItems: 2})
	defer c.Close()

	c.Set("first", 1)
	c.Set("second", 2)
	c.Get("first")     // second is now least recently used
	c.Set("first", 10) // overwrite does not evict
	if got := c.Stats().Evictions; got != 0 {
		t.Fatalf("Evictions = %d, want 0", got)
	}

	c.Set("third", 3)
	if _, ok := c.Get("second"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if v, ok := c.Get("first"); !ok || v != 10 {
		t.Errorf("Get(first) = %v, %v", v, ok)
	}
	if s := c.Stats(); s.Size != 2 || s.Evictions != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCache_DeleteClear(t *testing.T) {
	c := New[int](DefaultConfig())
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	c.Delete("never-set")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should miss")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	c.Set("c", 3)
	if _, ok := c.Get("c"); !ok {
		t.Error("cache should accept entries after Clear")
	}
}

func TestCache_Sweep(t *testing.T) {
	c := New[int](Config{SweepInterval: time.Millisecond})
	defer c.Close()

	c.SetWithTTL("gone", 1, time.Millisecond)
	c.SetWithTTL("kept", 2, time.Hour)

	deadline := time.Now().Add(time.Second)
	for c.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want expired entry swept", c.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int](Config{MaxItems: 16})
	defer c.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (w*100+i)%32)
				c.Set(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len() = %d exceeds MaxItems", c.Len())
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := New[string](Config{SweepInterval: time.Millisecond})
	c.Close()
	c.Close()

	c.Set("still", "works")
	if _, ok := c.Get("still"); !ok {
		t.Error("cache should stay usable after Close")
	}
}

func TestSourceKey(t *testing.T) {
	a := SourceKey("main.fx", []byte("let x = 1"))
	if len(a) != 64 {
		t.Errorf("len(SourceKey) = %d, want 64", len(a))
	}
	if a != SourceKey("main.fx", []byte("let x = 1")) {
		t.Error("SourceKey should be deterministic")
	}
	if a == SourceKey("other.fx", []byte("let x = 1")) {
		t.Error("file name should change the key")
	}
	if SourceKey("ab", []byte("c")) == SourceKey("a", []byte("bc")) {
		t.Error("name and source should be separated")
	}
}

func TestSourceCache(t *testing.T) {
	c := NewSourceCache[string](SourcesConfig{})
	defer c.Close()

	key := SourceKey("main.fx", []byte("let x = 1"))
	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache should miss")
	}

	c.Put(key, "tree")
	if v, ok := c.Get(key); !ok || v != "tree" {
		t.Errorf("Get() = %v, %v", v, ok)
	}

	stats := c.Stats()
	if stats["size"] != int64(1) || stats["hits"] != int64(1) || stats["misses"] != int64(1) {
		t.Errorf("Stats() = %v", stats)
	}
	if stats["hit_rate"] != float64(50) {
		t.Errorf("hit_rate = %v, want 50", stats["hit_rate"])
	}

	c.Invalidate(key)
	if _, ok := c.Get(key); ok {
		t.Error("invalidated entry should miss")
	}

	c.Put(key, "tree")
	c.Clear()
	if c.Stats()["size"] != int64(0) {
		t.Errorf("size after Clear = %v", c.Stats()["size"])
	}
}
