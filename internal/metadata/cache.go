package metadata

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores successful lookups keyed by the ISBN exactly as requested.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(isbn string) (*Lookup, bool)
	Add(isbn string, lookup *Lookup)
}

// LRUCache is a bounded in-memory Cache. Entries optionally expire after ttl.
type LRUCache struct {
	lru *expirable.LRU[string, *Lookup]
}

// NewLRUCache creates a cache holding at most size entries (0 means
// unbounded) that expire after ttl (0 means never).
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size < 0 {
		size = 0
	}
	return &LRUCache{lru: expirable.NewLRU[string, *Lookup](size, nil, ttl)}
}

func (c *LRUCache) Get(isbn string) (*Lookup, bool) {
	return c.lru.Get(isbn)
}

func (c *LRUCache) Add(isbn string, lookup *Lookup) {
	c.lru.Add(isbn, lookup)
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}

func (c *LRUCache) Purge() {
	c.lru.Purge()
}
