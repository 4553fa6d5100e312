package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"fjacquet/tering/internal/fileutils"
)

// GeocodeCache remembers GeoNames answers by query name. A nil ID records
// a query that found nothing. The cache is safe for concurrent use.
type GeocodeCache struct {
	mu      sync.RWMutex
	entries map[string]*int
	dirty   bool
}

// NewGeocodeCache returns an empty cache.
func NewGeocodeCache() *GeocodeCache {
	return &GeocodeCache{entries: make(map[string]*int)}
}

// LoadGeocodeCache reads a cache saved by Save. A missing file yields an
// empty cache.
func LoadGeocodeCache(path string) (*GeocodeCache, error) {
	c := NewGeocodeCache()
	data, err := os.ReadFile(path) // #nosec G304 -- configured cache path
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading geocode cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("error parsing geocode cache %s: %w", path, err)
	}
	if c.entries == nil {
		c.entries = make(map[string]*int)
	}
	return c, nil
}

// Lookup returns the cached ID for name. ok is false when name was never
// queried; a cached miss returns (nil, true).
func (c *GeocodeCache) Lookup(name string) (id *int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok = c.entries[name]
	return id, ok
}

// Store records the answer for name.
func (c *GeocodeCache) Store(name string, id *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = id
	c.dirty = true
}

// Len is the number of cached names.
func (c *GeocodeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns the cached names, sorted.
func (c *GeocodeCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty reports whether the cache changed since it was loaded or saved.
func (c *GeocodeCache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Save writes the cache as indented JSON.
func (c *GeocodeCache) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling geocode cache: %w", err)
	}
	if err := fileutils.WriteFileAtomic(path, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
