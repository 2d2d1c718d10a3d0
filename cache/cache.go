// Package cache provides a bounded in-memory TTL cache with prefix
// invalidation.
//
// The cache never loads values on its own. Read paths call Get and Set;
// write paths must call InvalidatePrefix after they commit so that readers
// never see data older than one TTL window.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Config configures a Cache
type Config struct {
	// TTL is how long an entry stays readable after Set
	TTL time.Duration
	// MaxSize bounds the number of entries; the least recently used entry
	// is evicted first. Zero means unbounded.
	MaxSize int
}

// Cache is a string-keyed TTL cache safe for concurrent use
type Cache[V any] struct {
	config Config
	clock  clockwork.Clock

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// New creates a cache using the real clock
func New[V any](cfg Config) *Cache[V] {
	return NewWithClock[V](cfg, clockwork.NewRealClock())
}

// NewWithClock creates a cache reading time from clock
func NewWithClock[V any](cfg Config, clock clockwork.Clock) *Cache[V] {
	return &Cache[V]{
		config: cfg,
		clock:  clock,
		order:  list.New(),
		items:  make(map[string]*list.Element),
	}
}

// AccountPrefix returns the key prefix of every cached projection of an account
func AccountPrefix(accountID string) string {
	return "account:" + accountID + ":"
}

// AccountKey returns the cache key of one projection of an account
func AccountKey(accountID, projection string) string {
	return AccountPrefix(accountID) + projection
}

// Get returns a live entry
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := elem.Value.(*entry[V])
	if !c.clock.Now().Before(ent.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return ent.value, true
}

// Set stores value under key for one TTL
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.config.TTL)
	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	for c.config.MaxSize > 0 && c.order.Len() > c.config.MaxSize {
		c.removeElement(c.order.Back())
	}
}

// Delete removes one key
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// InvalidatePrefix removes every key starting with prefix and returns how
// many were removed
func (c *Cache[V]) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, elem := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(elem)
			removed++
		}
	}
	return removed
}

// Cleanup sweeps expired entries and returns how many were removed
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for e := c.order.Back(); e != nil; {
		prev := e.Prev()
		if !now.Before(e.Value.(*entry[V]).expiresAt) {
			c.removeElement(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).key)
}
