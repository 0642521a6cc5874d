package primes_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/divisor"
	"github.com/Sumatoshi-tech/mindiv/pkg/primes"
)

func TestSieve(t *testing.T) {
	t.Parallel()

	assert.Empty(t, primes.Sieve(1))
	assert.Equal(t, []uint64{2}, primes.Sieve(2))
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, primes.Sieve(30))
	assert.Len(t, primes.Sieve(1000), 168)
}

func TestSieve_OnlyPrimes(t *testing.T) {
	t.Parallel()

	for _, p := range primes.Sieve(5000) {
		assert.Equal(t, 2, divisor.Count(p), "p=%d", p)
	}
}

func TestTable_DefaultCoversPrimesBelow1000(t *testing.T) {
	t.Parallel()

	table := primes.Default()
	require.GreaterOrEqual(t, table.Len(), 168)
	assert.Equal(t, uint64(2), table.At(0))
	assert.Equal(t, uint64(997), table.At(167))
	assert.InDelta(t, math.Ln2, table.Weight(0), 1e-12)
}

func TestTable_ExtendsPastEnd(t *testing.T) {
	t.Parallel()

	table := primes.NewTable(10)
	assert.Equal(t, 4, table.Len())

	// The 100th prime is 541.
	assert.Equal(t, uint64(541), table.At(99))
	assert.GreaterOrEqual(t, table.Len(), 100)
	assert.InDelta(t, math.Log(541), table.Weight(99), 1e-12)
}

func TestTable_First(t *testing.T) {
	t.Parallel()

	table := primes.NewTable(2)
	assert.Equal(t, []uint64{2, 3, 5, 7, 11}, table.First(5))
	assert.Empty(t, table.First(0))
}

func TestTable_NegativeIndexPanics(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "primes: negative index", func() {
		primes.NewTable(10).At(-1)
	})
}

func TestTable_ConcurrentExtension(t *testing.T) {
	t.Parallel()

	table := primes.NewTable(2)

	var wg sync.WaitGroup

	for worker := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			idx := 50 + worker*10
			assert.Equal(t, 2, divisor.Count(table.At(idx)))
		}()
	}

	wg.Wait()
}
