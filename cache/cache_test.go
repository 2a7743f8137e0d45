package cache

import (
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := New(10, time.Hour)
	defer c.Close()

	k := Key("nykaa", "https://www.nykaa.com/p/1")
	if _, ok := c.Get(k); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set(k, "https://images.nykaa.com/1.jpg")
	got, ok := c.Get(k)
	if !ok || got != "https://images.nykaa.com/1.jpg" {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10, time.Minute)
	defer c.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}

	c.evictExpired()
	if c.Len() != 0 {
		t.Errorf("Len = %d after eviction, want 0", c.Len())
	}
}

func TestCache_Capacity(t *testing.T) {
	c := New(2, time.Hour)
	defer c.Close()

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")
	if c.Len() != 2 {
		t.Fatalf("Len = %d after overwrite, want 2", c.Len())
	}

	c.Set("c", "4")
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if v, ok := c.Get("c"); !ok || v != "4" {
		t.Errorf("newest entry missing: %q, %v", v, ok)
	}
}

func TestCache_Disabled(t *testing.T) {
	c := New(10, 0)
	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Error("zero TTL should disable the cache")
	}

	var nilCache *Cache
	nilCache.Set("k", "v")
	if _, ok := nilCache.Get("k"); ok {
		t.Error("nil cache should always miss")
	}
}

func TestKey_Distinct(t *testing.T) {
	if Key("nykaa", "u") == Key("amazon", "u") {
		t.Error("keys for different sites must differ")
	}
}
