package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/mindiv/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := version.String()

	assert.Contains(t, s, "mindiv "+version.Version)
	assert.Contains(t, s, version.Commit)
	assert.Contains(t, s, runtime.GOOS)
	assert.NotEmpty(t, version.Version)
}
