package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersister_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	p := NewPersister[testState]("progress", NewLZ4Codec(NewJSONCodec()))

	require.NoError(t, p.Save(dir, sampleState()))
	assert.FileExists(t, filepath.Join(dir, "progress.json.lz4"))
	assert.Equal(t, filepath.Join(dir, "progress.json.lz4"), p.Path(dir))

	restored, err := p.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), restored)
}

func TestPersister_SaveOverwritesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersister[testState]("state", NewYAMLCodec())

	first := sampleState()
	require.NoError(t, p.Save(dir, first))

	second := sampleState()
	second.Count = 43
	require.NoError(t, p.Save(dir, second))

	restored, err := p.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 43, restored.Count)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestPersister_LoadMissing(t *testing.T) {
	t.Parallel()

	p := NewPersister[testState]("missing", NewJSONCodec())

	_, err := p.Load(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveState_MissingDir(t *testing.T) {
	t.Parallel()

	err := SaveState(filepath.Join(t.TempDir(), "absent"), "x", NewJSONCodec(), sampleState())
	require.Error(t, err)
}
