package bloom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/alg/bloom"
)

func TestNewWithEstimates_Validation(t *testing.T) {
	t.Parallel()

	_, err := bloom.NewWithEstimates(0, 0.01)
	require.ErrorIs(t, err, bloom.ErrZeroN)

	_, err = bloom.NewWithEstimates(10, 1)
	require.ErrorIs(t, err, bloom.ErrInvalidFP)
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	f, err := bloom.NewWithEstimates(10_000, 0.01)
	require.NoError(t, err)

	for key := uint64(0); key < 20_000; key += 2 {
		f.Add(key)
	}

	for key := uint64(0); key < 20_000; key += 2 {
		assert.True(t, f.Test(key), "key=%d", key)
	}

	assert.Equal(t, uint64(10_000), f.Count())
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	f, err := bloom.NewWithEstimates(10_000, 0.01)
	require.NoError(t, err)

	for key := range uint64(10_000) {
		f.Add(key)
	}

	falsePositives := 0

	for key := uint64(1_000_000); key < 1_010_000; key++ {
		if f.Test(key) {
			falsePositives++
		}
	}

	// 1% target; allow generous slack.
	assert.Less(t, falsePositives, 300)
}

func TestFilter_Reset(t *testing.T) {
	t.Parallel()

	f, err := bloom.NewWithEstimates(100, 0.01)
	require.NoError(t, err)

	f.Add(42)
	require.True(t, f.Test(42))

	f.Reset()
	assert.False(t, f.Test(42))
	assert.Zero(t, f.Count())
}
