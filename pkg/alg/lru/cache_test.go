package lru_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/alg/lru"
)

func identity(k uint64) uint64 { return k }

func TestCache_GetPut(t *testing.T) {
	t.Parallel()

	c := lru.New[string, int]()

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestCache_LRUEviction(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithMaxEntries[string, int](2))

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the victim.
	_, _ = c.Get("a")
	c.Put("c", 3)

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_InsertionOrderEviction(t *testing.T) {
	t.Parallel()

	c := lru.New(
		lru.WithMaxEntries[uint64, int](3),
		lru.WithInsertionOrder[uint64, int](),
	)

	for k := uint64(1); k <= 3; k++ {
		c.Put(k, int(k))
	}

	// Reads do not protect an entry under insertion order.
	_, _ = c.Get(1)
	c.Put(4, 4)

	assert.False(t, c.Contains(1))

	for k := uint64(2); k <= 4; k++ {
		assert.True(t, c.Contains(k), "k=%d", k)
	}
}

func TestCache_SlidingWindowKeepsMostRecent(t *testing.T) {
	t.Parallel()

	const window = 100

	c := lru.New(
		lru.WithMaxEntries[uint64, int](window),
		lru.WithInsertionOrder[uint64, int](),
	)

	for k := range uint64(1000) {
		c.Put(k, 0)
	}

	assert.Equal(t, window, c.Len())
	assert.False(t, c.Contains(899))
	assert.True(t, c.Contains(900))
	assert.True(t, c.Contains(999))
}

func TestCache_UpdateExisting(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithMaxEntries[string, int](2))

	c.Put("a", 1)
	c.Put("a", 10)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_OnEvict(t *testing.T) {
	t.Parallel()

	var evicted []string

	c := lru.New(
		lru.WithMaxEntries[string, int](1),
		lru.WithOnEvict(func(k string, _ int) { evicted = append(evicted, k) }),
	)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.Equal(t, []string{"a", "b"}, evicted)
}

func TestCache_BloomFilter(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithBloomFilter[uint64, int](identity, 1000))

	for k := range uint64(100) {
		c.Put(k, int(k))
	}

	for k := range uint64(100) {
		v, ok := c.Get(k)
		require.True(t, ok)
		assert.Equal(t, int(k), v)
	}

	for k := uint64(10_000); k < 10_100; k++ {
		_, ok := c.Get(k)
		assert.False(t, ok)
	}

	stats := c.Stats()
	assert.Equal(t, int64(100), stats.Hits)
	assert.Equal(t, int64(100), stats.Misses)
	assert.Positive(t, stats.BloomFiltered)
}

func TestCache_RemoveClear(t *testing.T) {
	t.Parallel()

	c := lru.New(lru.WithBloomFilter[uint64, int](identity, 100))
	c.Put(1, 1)
	c.Put(2, 2)

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
	assert.False(t, c.Contains(2))
}

func TestStats_HitRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, lru.Stats{}.HitRate(), 1e-12)
	assert.InDelta(t, 0.75, lru.Stats{Hits: 3, Misses: 1}.HitRate(), 1e-12)

	c := lru.New[int, int]()
	c.Put(1, 1)
	_, _ = c.Get(1)
	_, _ = c.Get(2)

	c.ResetStats()
	assert.Zero(t, c.Stats().Hits)
	assert.Zero(t, c.Stats().Misses)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := lru.New(
		lru.WithMaxEntries[uint64, int](64),
		lru.WithInsertionOrder[uint64, int](),
	)

	var wg sync.WaitGroup

	for w := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range uint64(1000) {
				key := uint64(w)*1000 + i
				c.Put(key, w)
				_, _ = c.Get(key)
			}
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
