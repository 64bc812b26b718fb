package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	key := c.Key("fp", []byte(formatted))
	if hit, err := c.IsFormatted(key); err != nil || hit {
		t.Fatalf("empty cache hit=%v err=%v", hit, err)
	}
	if err := c.MarkFormatted(key, "a.flow"); err != nil {
		t.Fatalf("MarkFormatted: %v", err)
	}
	if hit, err := c.IsFormatted(key); err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if other := c.Key("fp2", []byte(formatted)); other == key {
		t.Fatalf("fingerprint must change the key")
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if hit, _ := c.IsFormatted(key); hit {
		t.Fatalf("hit after DropAll")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	key := c.Key("fp", nil)
	if hit, err := c.IsFormatted(key); hit || err != nil {
		t.Fatalf("nil cache hit=%v err=%v", hit, err)
	}
	if err := c.MarkFormatted(key, "x"); err != nil {
		t.Fatalf("nil MarkFormatted: %v", err)
	}
}

func TestFormatPathsUsesCache(t *testing.T) {
	c, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ok.flow")
	writeSource(t, path, formatted)
	opts := FormatOptions{Check: true, Cache: c}

	first, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached {
		t.Fatalf("first run must not be cached")
	}
	second, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].Cached || second[0].Changed {
		t.Fatalf("second run should hit the cache: %+v", second[0])
	}

	if err := os.WriteFile(path, []byte(messy), 0o644); err != nil {
		t.Fatal(err)
	}
	third, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached || !third[0].Changed {
		t.Fatalf("edited file must miss the cache: %+v", third[0])
	}
}
