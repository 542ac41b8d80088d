package mimekit

import (
	"fmt"
	"testing"
	"time"
)

func TestResultCacheRoundTrip(t *testing.T) {
	c := newResultCache(time.Minute, 16, 8192)

	data := []byte("some candidate bytes")
	if _, ok := c.get(data); ok {
		t.Fatal("get on empty cache reported a hit")
	}
	c.put(data, "text/plain")

	got, ok := c.get(data)
	if !ok || got != "text/plain" {
		t.Errorf("get = %q, %v; want text/plain, true", got, ok)
	}
}

func TestResultCacheKeyIncludesLength(t *testing.T) {
	// Streams that share a sniffed header but differ in total length must
	// not collide.
	c := newResultCache(time.Minute, 16, 4)

	long := []byte("headtail")
	short := []byte("head")
	c.put(long, "application/octet-stream")

	if _, ok := c.get(short); ok {
		t.Error("prefix-sharing stream of different length hit the cache")
	}
}

func TestResultCacheExpiry(t *testing.T) {
	// A negative TTL makes every entry born expired.
	c := newResultCache(-time.Second, 16, 8192)

	data := []byte("short lived")
	c.put(data, "text/plain")
	if _, ok := c.get(data); ok {
		t.Error("expired entry reported as a hit")
	}
	if s := c.stats(); s.Evictions == 0 {
		t.Error("expired entry was not counted as evicted")
	}
}

func TestResultCacheBounded(t *testing.T) {
	c := newResultCache(time.Minute, 2, 8192)

	for i := 0; i < 5; i++ {
		c.put([]byte(fmt.Sprintf("entry-%d", i)), "text/plain")
	}

	if s := c.stats(); s.Size > 2 {
		t.Errorf("cache size = %d, want <= 2", s.Size)
	}
}

func TestResultCacheStats(t *testing.T) {
	c := newResultCache(time.Minute, 16, 8192)

	data := []byte("tracked")
	c.get(data) // miss
	c.put(data, "text/plain")
	c.get(data) // hit

	s := c.stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", s)
	}
	if s.HitRate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", s.HitRate)
	}
}
