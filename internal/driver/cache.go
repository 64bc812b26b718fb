package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio"
	"github.com/vmihailenco/msgpack/v5"

	"flowfmt/internal/project"
)

// Current schema version - increment when cacheEntry format changes
const cacheSchemaVersion uint16 = 1

// Cache remembers content that is already canonical for a given set of
// formatting options, so repeated runs skip it. Entries are msgpack files
// named by key. Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cacheEntry struct {
	Schema    uint16
	Path      string
	CheckedAt int64
}

// OpenCache initializes and returns a cache at the standard location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache returns a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the cache key for content formatted under fingerprint.
func (c *Cache) Key(fingerprint string, content []byte) project.Digest {
	return project.Combine(project.Sum([]byte(fingerprint)), project.Sum(content))
}

func (c *Cache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "fmt", hexKey[:2], hexKey+".mp")
}

// IsFormatted reports whether key was recorded as already formatted.
func (c *Cache) IsFormatted(key project.Digest) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return false, nil // stale or corrupt entry is a miss
	}
	return entry.Schema == cacheSchemaVersion, nil
}

// MarkFormatted records key as already formatted.
func (c *Cache) MarkFormatted(key project.Digest, path string) error {
	if c == nil {
		return nil
	}
	data, err := msgpack.Marshal(&cacheEntry{
		Schema:    cacheSchemaVersion,
		Path:      path,
		CheckedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	// Атомарная замена
	return renameio.WriteFile(p, data, 0o644)
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "fmt"))
}
