// Package primes provides the process-wide ascending prime table used to assign
// prime bases to exponents, together with the natural-log weight of each prime.
//
// The table starts with the primes below 1000 and grows on demand: asking for
// an index past the end re-sieves with a doubled limit instead of failing.
package primes

import (
	"math"
	"sync"
)

// initialLimit bounds the primes sieved when a table is created.
const initialLimit = 1000

// Table is a lazily extended ascending list of primes. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	primes  []uint64
	weights []float64
	limit   int
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared table, creating it on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(initialLimit)
	})

	return defaultTable
}

// NewTable creates a table holding every prime up to limit (at least 2).
func NewTable(limit int) *Table {
	t := &Table{}
	t.rebuild(max(limit, 2))

	return t
}

// Len returns the number of primes currently held.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.primes)
}

// At returns the i-th prime (0-based, At(0) == 2), extending the table if needed.
// It panics on a negative index.
func (t *Table) At(i int) uint64 {
	t.ensure(i)

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.primes[i]
}

// Weight returns ln(At(i)).
func (t *Table) Weight(i int) float64 {
	t.ensure(i)

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.weights[i]
}

// First returns a copy of the first k primes.
func (t *Table) First(k int) []uint64 {
	if k <= 0 {
		return []uint64{}
	}

	t.ensure(k - 1)

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]uint64, k)
	copy(out, t.primes[:k])

	return out
}

func (t *Table) ensure(i int) {
	if i < 0 {
		panic("primes: negative index")
	}

	t.mu.RLock()
	ok := i < len(t.primes)
	t.mu.RUnlock()

	if ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i >= len(t.primes) {
		t.rebuild(t.limit * 2)
	}
}

// rebuild must be called with the write lock held (or before publication).
func (t *Table) rebuild(limit int) {
	t.primes = Sieve(limit)
	t.weights = make([]float64, len(t.primes))

	for i, p := range t.primes {
		t.weights[i] = math.Log(float64(p))
	}

	t.limit = limit
}

// Sieve returns every prime up to and including limit using the Sieve of Eratosthenes.
func Sieve(limit int) []uint64 {
	if limit < 2 {
		return []uint64{}
	}

	composite := make([]bool, limit+1)
	for i := 2; i*i <= limit; i++ {
		if composite[i] {
			continue
		}

		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}

	result := make([]uint64, 0, limit/2)

	for i := 2; i <= limit; i++ {
		if !composite[i] {
			result = append(result, uint64(i))
		}
	}

	return result
}
