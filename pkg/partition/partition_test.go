package partition_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/partition"
)

// knownCounts holds the number of multiplicative partitions for selected n.
var knownCounts = map[int]int{
	1: 1, 2: 1, 4: 2, 6: 2, 8: 3, 12: 4, 16: 5, 24: 7, 30: 5,
	32: 7, 36: 9, 48: 12, 60: 11, 64: 11,
}

func TestEnumerate_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1, -24} {
		_, err := partition.Enumerate(n)
		require.ErrorIs(t, err, partition.ErrInvalidInput)
	}
}

func TestEnumerate_One(t *testing.T) {
	t.Parallel()

	got, err := partition.Enumerate(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0])
	assert.Equal(t, 1, got[0].Product())
}

func TestEnumerate_Prime(t *testing.T) {
	t.Parallel()

	got, err := partition.Enumerate(13)
	require.NoError(t, err)
	assert.Equal(t, []partition.Partition{{13}}, got)
}

func TestEnumerate_TwentyFour(t *testing.T) {
	t.Parallel()

	got, err := partition.Enumerate(24)
	require.NoError(t, err)

	want := []partition.Partition{
		{24},
		{6, 4},
		{8, 3},
		{12, 2},
		{4, 3, 2},
		{6, 2, 2},
		{3, 2, 2, 2},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Enumerate(24) mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerate_KnownCounts(t *testing.T) {
	t.Parallel()

	for n, count := range knownCounts {
		got, err := partition.Enumerate(n)
		require.NoError(t, err)
		assert.Len(t, got, count, "n=%d", n)
	}
}

func TestEnumerate_Invariants(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 720; n++ {
		got, err := partition.Enumerate(n)
		require.NoError(t, err)

		seen := make(map[string]bool, len(got))
		hasTrivial := false

		for _, p := range got {
			assert.Equal(t, n, p.Product(), "n=%d partition=%v", n, p)
			assert.False(t, seen[p.Key()], "duplicate partition %v for n=%d", p, n)
			seen[p.Key()] = true

			for i, part := range p {
				assert.GreaterOrEqual(t, part, 2, "n=%d partition=%v", n, p)

				if i > 0 {
					assert.LessOrEqual(t, part, p[i-1], "not descending: %v", p)
				}
			}

			if len(p) == 1 && p[0] == n {
				hasTrivial = true
			}
		}

		assert.True(t, hasTrivial, "missing trivial partition for n=%d", n)
	}
}

func TestEnumerate_Complete(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 400; n++ {
		got, err := partition.Enumerate(n)
		require.NoError(t, err)

		want := referencePartitions(n, n)

		gotKeys := make(map[string]bool, len(got))
		for _, p := range got {
			gotKeys[p.Key()] = true
		}

		wantKeys := make(map[string]bool, len(want))
		for _, p := range want {
			wantKeys[p.Key()] = true
		}

		if diff := cmp.Diff(wantKeys, gotKeys); diff != "" {
			t.Errorf("Enumerate(%d) mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestPartition_Helpers(t *testing.T) {
	t.Parallel()

	p := partition.Partition{6, 2, 2}
	assert.Equal(t, 24, p.Product())
	assert.Equal(t, []int{5, 1, 1}, p.Exponents())
	assert.Equal(t, "6,2,2", p.Key())
	assert.Equal(t, "[6 2 2]", p.String())
}

// referencePartitions lists factorizations of n with parts <= maxPart in
// non-increasing order by plain recursion over divisors.
func referencePartitions(n, maxPart int) []partition.Partition {
	if n == 1 {
		return []partition.Partition{{}}
	}

	var out []partition.Partition

	for d := min(n, maxPart); d >= 2; d-- {
		if n%d != 0 {
			continue
		}

		for _, rest := range referencePartitions(n/d, d) {
			out = append(out, append(partition.Partition{d}, rest...))
		}
	}

	return out
}
