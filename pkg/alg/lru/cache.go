// Package lru provides a bounded, thread-safe key-value cache.
//
// Two eviction policies are supported. The default is least-recently-used: a
// successful Get moves the entry to the front. WithInsertionOrder switches to a
// sliding window, where entries are evicted strictly in the order they were
// inserted and reads never reorder them.
//
// An optional Bloom pre-filter (WithBloomFilter) short-circuits lookups for
// keys that were never inserted, avoiding the map probe and lock contention.
package lru

import (
	"sync"

	"github.com/Sumatoshi-tech/mindiv/pkg/alg/bloom"
)

// defaultBloomFP is the false-positive rate for the optional Bloom pre-filter.
const defaultBloomFP = 0.01

// entry is a node in the doubly-linked eviction list.
type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

// Cache is a bounded, thread-safe cache with LRU or insertion-order eviction.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	items map[K]*entry[K, V]
	head  *entry[K, V] // Most recent.
	tail  *entry[K, V] // Next eviction victim.

	maxEntries     int
	insertionOrder bool

	filter  *bloom.Filter
	keyHash func(K) uint64

	onEvict func(K, V)

	hits          int64
	misses        int64
	bloomFiltered int64
	evictions     int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMaxEntries bounds the cache to at most n entries. Zero or negative means unbounded.
func WithMaxEntries[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.maxEntries = n
	}
}

// WithInsertionOrder evicts the oldest inserted entry regardless of reads.
func WithInsertionOrder[K comparable, V any]() Option[K, V] {
	return func(c *Cache[K, V]) {
		c.insertionOrder = true
	}
}

// WithBloomFilter enables a Bloom pre-filter sized for expectedN keys.
// keyHash maps a key to the 64-bit value the filter indexes.
func WithBloomFilter[K comparable, V any](keyHash func(K) uint64, expectedN uint) Option[K, V] {
	return func(c *Cache[K, V]) {
		f, err := bloom.NewWithEstimates(expectedN, defaultBloomFP)
		if err != nil {
			return
		}

		c.filter = f
		c.keyHash = keyHash
	}
}

// WithOnEvict registers a callback invoked (under the cache lock) for every evicted entry.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New creates an empty cache.
func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]*entry[K, V]),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// MaxEntries returns the configured bound (zero when unbounded).
func (c *Cache[K, V]) MaxEntries() int {
	return c.maxEntries
}

func (c *Cache[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = c.head

	if c.head != nil {
		c.head.prev = e
	}

	c.head = e

	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}

	e.prev = nil
	e.next = nil
}

func (c *Cache[K, V]) moveToFront(e *entry[K, V]) {
	if c.head == e {
		return
	}

	c.unlink(e)
	c.pushFront(e)
}

func (c *Cache[K, V]) evictTail() {
	victim := c.tail
	if victim == nil {
		return
	}

	c.unlink(victim)
	delete(c.items, victim.key)
	c.evictions++

	if c.onEvict != nil {
		c.onEvict(victim.key, victim.value)
	}
}
