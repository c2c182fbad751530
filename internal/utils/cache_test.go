package utils

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := GetCache()
	c.Set("k1", "v1", time.Minute)

	if got := c.Get("k1"); got != "v1" {
		t.Fatalf("expected v1, got %v", got)
	}

	c.Delete("k1")
	if got := c.Get("k1"); got != nil {
		t.Errorf("expected miss after delete, got %v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := GetCache()
	c.Set("k2", "v2", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if got := c.Get("k2"); got != nil {
		t.Errorf("expected expired entry to miss, got %v", got)
	}
}
