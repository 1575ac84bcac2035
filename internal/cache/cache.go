// Package cache is a small in-process cache with named groups, so every
// entry belonging to one user or one table can be dropped at once.
package cache

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
)

type Cache struct {
	store *ristretto.Cache

	mu     sync.Mutex
	groups map[string]map[string]struct{}
}

// New creates a cache holding roughly maxItems entries.
func New(maxItems int64) (*Cache, error) {
	if maxItems <= 0 {
		maxItems = 10000
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{store: store, groups: make(map[string]map[string]struct{})}, nil
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// Set stores value under key and remembers that key belongs to group.
// Writes become visible asynchronously; call Wait when a read must see it.
func (c *Cache) Set(group, key string, value interface{}) {
	c.mu.Lock()
	keys, ok := c.groups[group]
	if !ok {
		keys = make(map[string]struct{})
		c.groups[group] = keys
	}
	keys[key] = struct{}{}
	c.mu.Unlock()
	c.store.Set(key, value, 1)
}

func (c *Cache) Del(key string) {
	c.mu.Lock()
	for _, keys := range c.groups {
		delete(keys, key)
	}
	c.mu.Unlock()
	c.store.Del(key)
}

// ClearGroup drops every key stored under group.
func (c *Cache) ClearGroup(group string) {
	c.mu.Lock()
	keys := c.groups[group]
	delete(c.groups, group)
	c.mu.Unlock()
	for key := range keys {
		c.store.Del(key)
	}
}

// Wait blocks until pending writes are applied.
func (c *Cache) Wait() {
	c.store.Wait()
}

func (c *Cache) Close() {
	c.store.Close()
}
