package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
)

func sampleRecords() []resultlog.Record {
	return []resultlog.Record{
		{N: 1, Factorization: factor.Factorization{}},
		{N: 2, Factorization: factor.Of(2), Rule: rules.Prime},
		{N: 3, Factorization: factor.Of(4), Rule: rules.Prime},
	}
}

func sampleProgress() Progress {
	return Progress{Start: 1, End: 10, Next: 4, Completed: 3}
}

func TestRunHash(t *testing.T) {
	t.Parallel()

	h := RunHash("auto", 1)
	assert.Len(t, h, 16)
	assert.Equal(t, h, RunHash("auto", 1))
	assert.NotEqual(t, h, RunHash("auto", 2))
	assert.NotEqual(t, h, RunHash("bruteforce", 1))
}

func TestNewRunID(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewRunID(), NewRunID())
	assert.Len(t, NewRunID(), 36)
}

func TestManager_Paths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	assert.Equal(t, filepath.Join(dir, "abc123"), m.CheckpointDir())
	assert.Equal(t, filepath.Join(dir, "abc123", "checkpoint.json"), m.MetadataPath())
	assert.Equal(t, DefaultMaxAge, m.MaxAge)
}

func TestManager_SaveLoad(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))
	assert.False(t, m.Exists())

	runID := NewRunID()
	require.NoError(t, m.Save(runID, "auto", sampleProgress(), sampleRecords()))
	assert.True(t, m.Exists())
	assert.FileExists(t, filepath.Join(m.CheckpointDir(), "results.json.lz4"))

	meta, records, err := m.Load()
	require.NoError(t, err)

	assert.Equal(t, MetadataVersion, meta.Version)
	assert.Equal(t, runID, meta.RunID)
	assert.Equal(t, sampleProgress(), meta.Progress)
	require.Len(t, records, 3)
	assert.Equal(t, rules.Prime, records[2].Rule)
	assert.Equal(t, "2^2", records[2].Form())
}

func TestManager_SaveOverwrites(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))
	runID := NewRunID()

	require.NoError(t, m.Save(runID, "auto", sampleProgress(), sampleRecords()[:1]))

	progress := sampleProgress()
	progress.Failed = []int{7}
	require.NoError(t, m.Save(runID, "auto", progress, sampleRecords()))

	meta, records, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{7}, meta.Progress.Failed)
	assert.Len(t, records, 3)
}

func TestManager_Load_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))
	require.NoError(t, m.Save(NewRunID(), "auto", sampleProgress(), sampleRecords()))

	path := filepath.Join(m.CheckpointDir(), "results.json.lz4")
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o600))

	_, _, err := m.Load()
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestManager_LoadMetadata_SchemaViolation(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), "abc123")
	require.NoError(t, os.MkdirAll(m.CheckpointDir(), 0o750))
	require.NoError(t, os.WriteFile(m.MetadataPath(), []byte(`{"version": 0, "strategy": "guess"}`), 0o600))

	_, err := m.LoadMetadata()
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestManager_Save_RejectsInvalidRunID(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))

	err := m.Save("not-a-uuid", "auto", sampleProgress(), nil)
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestManager_LoadMetadata_Missing(t *testing.T) {
	t.Parallel()

	_, err := NewManager(t.TempDir(), "abc123").LoadMetadata()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestManager_Validate(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))
	require.NoError(t, m.Save(NewRunID(), "auto", sampleProgress(), sampleRecords()))

	require.NoError(t, m.Validate("auto", 1))
	require.ErrorIs(t, m.Validate("bruteforce", 1), ErrStrategyMismatch)
	require.ErrorIs(t, m.Validate("auto", 5), ErrStartMismatch)
}

func TestManager_Validate_Expired(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))
	m.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, m.Save(NewRunID(), "auto", sampleProgress(), sampleRecords()))

	m.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }
	require.ErrorIs(t, m.Validate("auto", 1), ErrExpired)

	m.MaxAge = 0
	require.NoError(t, m.Validate("auto", 1))
}

func TestManager_Clear(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir(), RunHash("auto", 1))
	require.NoError(t, m.Clear())

	require.NoError(t, m.Save(NewRunID(), "auto", sampleProgress(), sampleRecords()))
	require.NoError(t, m.Clear())
	assert.False(t, m.Exists())
}
