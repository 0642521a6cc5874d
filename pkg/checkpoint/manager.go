package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/mindiv/pkg/persist"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
)

// MetadataVersion is the current checkpoint metadata format version.
const MetadataVersion = 1

// DefaultMaxAge is how long a checkpoint stays resumable.
const DefaultMaxAge = 7 * 24 * time.Hour

// File layout inside a run directory.
const (
	metadataFile    = "checkpoint.json"
	resultsBasename = "results"
	dirPerm         = 0o750
	filePerm        = 0o600
)

// Sentinel errors for checkpoint validation.
var (
	ErrStrategyMismatch = errors.New("strategy mismatch")
	ErrStartMismatch    = errors.New("start mismatch")
	ErrExpired          = errors.New("checkpoint expired")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// DefaultDir returns the default checkpoint directory (~/.mindiv/checkpoints).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".mindiv", "checkpoints")
}

// RunHash identifies a run by its strategy and first n, so a run extended to a
// larger end still resumes from the same checkpoint.
func RunHash(strategy string, start int) string {
	h := sha256.Sum256([]byte(strategy + "/" + strconv.Itoa(start)))

	return hex.EncodeToString(h[:8])
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Manager reads and writes the checkpoint of one run.
type Manager struct {
	BaseDir string
	RunHash string
	MaxAge  time.Duration

	results *persist.Persister[[]resultlog.Record]
	now     func() time.Time
}

// NewManager creates a checkpoint manager for the run identified by runHash.
func NewManager(baseDir, runHash string) *Manager {
	return &Manager{
		BaseDir: baseDir,
		RunHash: runHash,
		MaxAge:  DefaultMaxAge,
		results: persist.NewPersister[[]resultlog.Record](resultsBasename, persist.NewLZ4Codec(&persist.JSONCodec{})),
		now:     time.Now,
	}
}

// CheckpointDir returns the directory for this run's checkpoint.
func (m *Manager) CheckpointDir() string {
	return filepath.Join(m.BaseDir, m.RunHash)
}

// MetadataPath returns the path to the metadata file.
func (m *Manager) MetadataPath() string {
	return filepath.Join(m.CheckpointDir(), metadataFile)
}

// Exists returns true if a checkpoint exists for the run.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.MetadataPath())

	return err == nil
}

// Clear removes the checkpoint for the run.
func (m *Manager) Clear() error {
	err := os.RemoveAll(m.CheckpointDir())
	if err != nil {
		return fmt.Errorf("remove checkpoint dir: %w", err)
	}

	return nil
}

// Save writes the results emitted so far and the run progress. The results
// snapshot is written first so metadata never points at a missing snapshot.
func (m *Manager) Save(runID, strategy string, progress Progress, records []resultlog.Record) error {
	cpDir := m.CheckpointDir()

	err := os.MkdirAll(cpDir, dirPerm)
	if err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	saveErr := m.results.Save(cpDir, records)
	if saveErr != nil {
		return fmt.Errorf("save results: %w", saveErr)
	}

	sum, sumErr := fileChecksum(m.results.Path(cpDir))
	if sumErr != nil {
		return sumErr
	}

	meta := Metadata{
		Version:   MetadataVersion,
		RunID:     runID,
		RunHash:   m.RunHash,
		CreatedAt: m.now().UTC().Format(time.RFC3339),
		Strategy:  strategy,
		Progress:  progress,
		Checksums: map[string]string{filepath.Base(m.results.Path(cpDir)): sum},
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	validateErr := validateMetadata(metaData)
	if validateErr != nil {
		return validateErr
	}

	tmpPath := m.MetadataPath() + ".tmp"

	writeErr := os.WriteFile(tmpPath, metaData, filePerm)
	if writeErr != nil {
		return fmt.Errorf("write metadata: %w", writeErr)
	}

	renameErr := os.Rename(tmpPath, m.MetadataPath())
	if renameErr != nil {
		return fmt.Errorf("write metadata: %w", renameErr)
	}

	return nil
}

// LoadMetadata loads and schema-validates the checkpoint metadata.
func (m *Manager) LoadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(m.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	validateErr := validateMetadata(data)
	if validateErr != nil {
		return nil, validateErr
	}

	var meta Metadata

	unmarshalErr := json.Unmarshal(data, &meta)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", unmarshalErr)
	}

	return &meta, nil
}

// Load returns the metadata and the results snapshot after verifying its checksum.
func (m *Manager) Load() (*Metadata, []resultlog.Record, error) {
	meta, err := m.LoadMetadata()
	if err != nil {
		return nil, nil, err
	}

	cpDir := m.CheckpointDir()
	path := m.results.Path(cpDir)

	sum, sumErr := fileChecksum(path)
	if sumErr != nil {
		return nil, nil, sumErr
	}

	if want := meta.Checksums[filepath.Base(path)]; want != sum {
		return nil, nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, filepath.Base(path))
	}

	records, loadErr := m.results.Load(cpDir)
	if loadErr != nil {
		return nil, nil, fmt.Errorf("load results: %w", loadErr)
	}

	return meta, records, nil
}

// Validate checks that the checkpoint belongs to a run with the given
// strategy and start, and that it is younger than MaxAge.
func (m *Manager) Validate(strategy string, start int) error {
	meta, err := m.LoadMetadata()
	if err != nil {
		return err
	}

	if meta.Strategy != strategy {
		return fmt.Errorf("%w: checkpoint has %q, got %q", ErrStrategyMismatch, meta.Strategy, strategy)
	}

	if meta.Progress.Start != start {
		return fmt.Errorf("%w: checkpoint has %d, got %d", ErrStartMismatch, meta.Progress.Start, start)
	}

	created, parseErr := time.Parse(time.RFC3339, meta.CreatedAt)
	if parseErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, parseErr)
	}

	if m.MaxAge > 0 && m.now().Sub(created) > m.MaxAge {
		return fmt.Errorf("%w: created %s", ErrExpired, meta.CreatedAt)
	}

	return nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()

	_, copyErr := io.Copy(h, f)
	if copyErr != nil {
		return "", fmt.Errorf("checksum: %w", copyErr)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
