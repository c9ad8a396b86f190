package cache

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute, 10)

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) found a value")
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %v, want 2", v)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) found a deleted value")
	}
}

func TestTTLCacheEvictsOldest(t *testing.T) {
	c := NewTTLCache[int, int](time.Minute, 2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	if c.Count() != 2 {
		t.Errorf("Count() = %d, want 2", c.Count())
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest item was not evicted")
	}
}

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache[string, string](20*time.Millisecond, 0)
	c.Set("k", "v")
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired item still returned")
	}
}

func TestTTLCacheClear(t *testing.T) {
	c := NewTTLCache[string, string](time.Minute, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()
	if c.Count() != 0 {
		t.Errorf("Count() after Clear = %d", c.Count())
	}
	if c.TTL() != time.Minute {
		t.Errorf("TTL() = %v", c.TTL())
	}
}
