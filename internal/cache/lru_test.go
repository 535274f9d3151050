package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// a was used last, so b is evicted.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses", hits, misses)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(time.Second)

	if _, ok := c.Get("x"); ok {
		t.Error("expected x to be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_ZeroTTLDisables(t *testing.T) {
	c := NewLRUCache[int](10, 0)
	c.Set("x", 1)
	if _, ok := c.Get("x"); ok {
		t.Error("zero TTL should not cache")
	}
}

func TestManager_PurgeAll(t *testing.T) {
	a := NewLRUCache[int](10, time.Minute)
	b := NewLRUCache[string](10, time.Minute)
	a.Set("k", 1)
	b.Set("k", "v")

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	m.PurgeAll()
	if a.Size() != 0 || b.Size() != 0 {
		t.Errorf("expected empty caches, got %d and %d", a.Size(), b.Size())
	}

	a.Set("k", 2)
	if v, ok := a.Get("k"); !ok || v != 2 {
		t.Errorf("cache unusable after purge: %v %v", v, ok)
	}
}

func TestManager_StopWithoutStart(t *testing.T) {
	NewManager(nil).Stop()
}

func TestManager_StoreIfSkipsAfterPurge(t *testing.T) {
	m := NewManager(nil)
	c := NewLRUCache[string](4, time.Minute)
	m.Register(c)

	gen := m.Generation()
	if !m.StoreIf(gen, func() { c.Set("k", "fresh") }) {
		t.Fatal("expected store within the same generation")
	}

	// A purge between the load and the store discards the loaded value.
	gen = m.Generation()
	m.PurgeAll()
	if m.StoreIf(gen, func() { c.Set("k", "stale") }) {
		t.Fatal("expected store to be skipped after a purge")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("stale value must not be cached")
	}
	if m.Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", m.Generation(), gen+1)
	}
}
