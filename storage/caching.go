package storage

import (
	"errors"
	"sync"
)

// cacheEntry is the tri-state cache slot: a key can be known-absent, known
// to exist with an unknown value (after Has), or fully cached.
type cacheEntry struct {
	exists   bool
	hasValue bool
	value    any
}

// Caching is a read-through/write-through decorator. It queries the decorated
// store at most once per key until a Set on that key refreshes the slot.
// Keys are cached exactly as passed in, before any inner decoration.
type Caching struct {
	decorated Storage
	mu        sync.Mutex
	cache     map[string]cacheEntry
}

// NewCaching wraps decorated with a cache.
func NewCaching(decorated Storage) *Caching {
	return &Caching{decorated: decorated, cache: map[string]cacheEntry{}}
}

func (c *Caching) Get(key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.cache[key]; ok {
		if !entry.exists {
			return nil, ErrNotFound
		}
		if entry.hasValue {
			return entry.value, nil
		}
		// Known to exist from an earlier Has, value not fetched yet.
	}
	value, err := c.decorated.Get(key)
	if errors.Is(err, ErrNotFound) {
		c.cache[key] = cacheEntry{}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.cache[key] = cacheEntry{exists: true, hasValue: true, value: value}
	return value, nil
}

func (c *Caching) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.decorated.Set(key, value); err != nil {
		return err
	}
	c.cache[key] = cacheEntry{exists: true, hasValue: true, value: value}
	return nil
}

func (c *Caching) Has(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.cache[key]; ok {
		return entry.exists, nil
	}
	exists, err := c.decorated.Has(key)
	if err != nil {
		return false, err
	}
	c.cache[key] = cacheEntry{exists: exists}
	return exists, nil
}

// All enumerates through the decorated store and folds the batch into the
// cache without overwriting slots that are already populated: a value written
// through this cache is fresher than one read back from the decorated store.
// The returned batch substitutes cached values for the same reason.
func (c *Caching) All(sel Selector) (map[string]any, error) {
	all, err := c.decorated.All(sel)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range all {
		if entry, ok := c.cache[key]; ok {
			if entry.exists && entry.hasValue {
				all[key] = entry.value
			}
			continue
		}
		c.cache[key] = cacheEntry{exists: true, hasValue: true, value: value}
	}
	return all, nil
}

var _ Storage = (*Caching)(nil)
