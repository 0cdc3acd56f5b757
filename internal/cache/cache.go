// Package cache stores per-file analysis results keyed by content hash.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// Cache is a directory of JSON entries. Entries are valid while the content
// hash they were stored under still matches and the TTL has not expired.
// A disabled Cache misses every lookup and ignores writes.
type Cache struct {
	dir       string
	ttl       time.Duration
	namespace string
	enabled   bool
	log       *zap.Logger
	now       func() time.Time
}

// entry is the on-disk record.
type entry struct {
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger logs unreadable or stale entries at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithNamespace separates entries written by different result schemas.
func WithNamespace(ns string) Option {
	return func(c *Cache) {
		c.namespace = ns
	}
}

// New opens a cache rooted at dir, creating it when enabled.
func New(dir string, ttl time.Duration, enabled bool, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:     dir,
		ttl:     ttl,
		enabled: enabled,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !enabled {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return c, nil
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashBytes computes a BLAKE3 hash of data as a hex string.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get decodes the entry for key into v when it was stored with hash and has
// not expired. Expired entries are removed.
func (c *Cache) Get(key, hash string, v any) bool {
	if !c.Enabled() {
		return false
	}

	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Debug("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = os.Remove(path)
		return false
	}
	if e.Hash != hash {
		return false
	}
	if c.ttl > 0 && c.now().Sub(e.Timestamp) > c.ttl {
		c.log.Debug("cache entry expired", zap.String("key", key))
		_ = os.Remove(path)
		return false
	}

	if err := json.Unmarshal(e.Data, v); err != nil {
		c.log.Debug("cache entry does not decode", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Put stores v for key under hash.
func (c *Cache) Put(key, hash string, v any) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entry{Hash: hash, Timestamp: c.now(), Data: data})
	if err != nil {
		return err
	}

	// Write then rename so concurrent readers never see a partial entry.
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(key))
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key string) error {
	if !c.Enabled() {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath hashes the namespaced key into a file name.
func (c *Cache) keyPath(key string) string {
	sum := blake3.Sum256([]byte(c.namespace + "\x00" + key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Stats describes the entries on disk.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.Enabled() {
		return stats, nil
	}

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
