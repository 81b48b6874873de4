package store

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheTTL bounds how long a cached spec body is considered fresh.
const cacheTTL = 24 * time.Hour

// Cache handles disk caching of raw spec bodies, keyed by source URL or
// path. A stale or missing entry reads as a miss; the caller re-fetches.
// Concurrent fills of the same entry are benign: content is idempotent and
// the last write wins (no single-flight deduplication).
type Cache struct {
	dir string
}

// NewCache creates a cache in the given directory.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) cacheFile(source string) string {
	hash := sha256.Sum256([]byte(source))
	return filepath.Join(c.dir, fmt.Sprintf("%x.cache", hash[:8]))
}

// Get returns cached data if fresh, or nil if stale/missing.
func (c *Cache) Get(source string) []byte {
	path := c.cacheFile(source)
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if time.Since(info.ModTime()) > cacheTTL {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// Put stores data in the cache.
func (c *Cache) Put(source string, data []byte) error {
	return os.WriteFile(c.cacheFile(source), data, 0o644)
}

// Invalidate removes a cached entry.
func (c *Cache) Invalidate(source string) {
	os.Remove(c.cacheFile(source))
}
