package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMix64_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Mix64(12345), Mix64(12345))
	assert.NotEqual(t, Mix64(1), Mix64(2))
	assert.Equal(t, uint64(0), Mix64(0))
}

func TestSplitmix64_DiffersFromMix64(t *testing.T) {
	t.Parallel()

	for v := range uint64(100) {
		assert.NotEqual(t, Mix64(v), Splitmix64(v), "v=%d", v)
	}
}
