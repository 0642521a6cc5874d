package divisor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/mindiv/pkg/divisor"
)

func TestCount_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    uint64
		want int
	}{
		{name: "zero", m: 0, want: 0},
		{name: "one", m: 1, want: 1},
		{name: "prime", m: 13, want: 2},
		{name: "large_prime", m: 1_000_003, want: 2},
		{name: "prime_square", m: 49, want: 3},
		{name: "semiprime", m: 35, want: 4},
		{name: "prime_cube", m: 27, want: 4},
		{name: "twelve", m: 12, want: 6},
		{name: "highly_composite", m: 360, want: 24},
		{name: "power_of_two", m: 1 << 20, want: 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, divisor.Count(tt.m))
		})
	}
}

func TestCount_MatchesDivisorsLength(t *testing.T) {
	t.Parallel()

	for m := uint64(1); m <= 2000; m++ {
		assert.Len(t, divisor.Divisors(m), divisor.Count(m), "m=%d", m)
	}
}

func TestCount_PerfectSquaresAreOdd(t *testing.T) {
	t.Parallel()

	for root := uint64(1); root <= 100; root++ {
		assert.Equal(t, 1, divisor.Count(root*root)%2, "m=%d", root*root)
	}
}

func TestDivisors_Ascending(t *testing.T) {
	t.Parallel()

	assert.Nil(t, divisor.Divisors(0))
	assert.Equal(t, []uint64{1}, divisor.Divisors(1))
	assert.Equal(t, []uint64{1, 2, 4, 8}, divisor.Divisors(8))
	assert.Equal(t, []uint64{1, 2, 3, 4, 6, 9, 12, 18, 36}, divisor.Divisors(36))
	assert.Equal(t, []uint64{1, 3, 5, 15}, divisor.Divisors(15))
}
