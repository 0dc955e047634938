package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
)

// Cache is the persistent description -> category store. Entries are keyed
// by the composite of model identifier, allowed-category set and
// description, so changing the category list implicitly invalidates old
// entries. The backing file is a flat JSON object rewritten whole on every
// new entry; a cross-process file lock serializes the read-merge-write so
// concurrent runs cannot lose each other's entries.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]string
}

type cacheKey struct {
	Model       string   `json:"model"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// Key builds the deterministic composite cache key. The category list is
// sorted so two calls with the same set in different order share entries,
// and the whole tuple is JSON-serialized so no delimiter choice can collide
// across inputs.
func Key(model string, categories []string, description string) string {
	sorted := make([]string, len(categories))
	copy(sorted, categories)
	sort.Strings(sorted)

	b, _ := json.Marshal(cacheKey{
		Model:       model,
		Categories:  sorted,
		Description: description,
	})
	return string(b)
}

// NewCache loads the cache at path into memory. A missing, unreadable or
// corrupt file degrades to an empty cache; the worst case is a full
// reclassification, never a failed run.
func NewCache(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]string),
	}
	if data, err := os.ReadFile(path); err == nil {
		var loaded map[string]string
		if json.Unmarshal(data, &loaded) == nil {
			c.entries = loaded
		}
	}
	return c
}

// Get returns the cached category for key, if present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	category, ok := c.entries[key]
	return category, ok
}

// Put records a resolved mapping and persists the whole cache immediately.
// Under the file lock, entries written by concurrent processes since our
// load are merged in before the rewrite; our own key always wins.
func (c *Cache) Put(key, category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = category

	lock := flock.New(c.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("cache: locking %s: %w", c.path, err)
	}
	defer lock.Unlock()

	if data, err := os.ReadFile(c.path); err == nil {
		var onDisk map[string]string
		if json.Unmarshal(data, &onDisk) == nil {
			for k, v := range onDisk {
				if _, ours := c.entries[k]; !ours {
					c.entries[k] = v
				}
			}
		}
	}

	return c.writeLocked()
}

// writeLocked rewrites the cache file atomically via temp file + rename.
// Callers must hold both the mutex and the file lock.
func (c *Cache) writeLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("cache: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: replacing %s: %w", c.path, err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}
