package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
	"github.com/forgeworks/forge/internal/flock"
)

// LockTimeout is the maximum duration to wait for acquiring a file lock.
const LockTimeout = 5 * time.Second

// listConcurrency bounds concurrent snapshot reads during List.
const listConcurrency = 8

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// validRunIDRegex matches valid run IDs (run-YYYYMMDD-HHMMSS with optional ms suffix).
var validRunIDRegex = regexp.MustCompile(`^run-\d{8}-\d{6}(-\d{3})?$`)

// RunStore defines the interface for run snapshot persistence.
type RunStore interface {
	// Create persists a new run snapshot.
	// Returns ErrRunExists if the run directory already exists.
	Create(ctx context.Context, snap *domain.Snapshot) error

	// Get loads a run snapshot by ID.
	// Returns ErrRunNotFound if the run doesn't exist.
	Get(ctx context.Context, runID string) (*domain.Snapshot, error)

	// Update saves the current run snapshot (atomic write).
	// Returns ErrRunNotFound if the run doesn't exist.
	Update(ctx context.Context, snap *domain.Snapshot) error

	// List returns all run snapshots, sorted by save time (newest first).
	List(ctx context.Context) ([]*domain.Snapshot, error)

	// Delete removes a run and its state file.
	Delete(ctx context.Context, runID string) error
}

// FileStore implements RunStore using the local filesystem, one directory
// per run under ~/.forge/runs.
type FileStore struct {
	forgeHome string // Usually ~/.forge
}

// NewFileStore creates a new FileStore with the given forge home directory.
// If forgeHome is empty, the FORGE_HOME environment variable is consulted,
// then the default ~/.forge directory.
func NewFileStore(forgeHome string) (*FileStore, error) {
	if forgeHome == "" {
		forgeHome = os.Getenv("FORGE_HOME")
	}
	if forgeHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		forgeHome = filepath.Join(home, constants.ForgeHome)
	}
	return &FileStore{forgeHome: forgeHome}, nil
}

// Create persists a new run snapshot.
func (s *FileStore) Create(ctx context.Context, snap *domain.Snapshot) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if snap == nil {
		return fmt.Errorf("failed to create run: snapshot %w", forgeerrors.ErrEmptyValue)
	}
	if snap.RunID == "" {
		return fmt.Errorf("failed to create run: run ID %w", forgeerrors.ErrEmptyValue)
	}

	runDir := s.runDir(snap.RunID)

	if _, err := os.Stat(runDir); err == nil {
		return fmt.Errorf("failed to create run '%s': %w", snap.RunID, forgeerrors.ErrRunExists)
	}

	if err := os.MkdirAll(runDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	snap.SchemaVersion = constants.SnapshotSchemaVersion

	lockFile, err := s.acquireLock(ctx, snap.RunID)
	if err != nil {
		_ = os.RemoveAll(runDir)
		return fmt.Errorf("failed to create run '%s': %w", snap.RunID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		_ = os.RemoveAll(runDir)
		return fmt.Errorf("failed to create run '%s': %w", snap.RunID, err)
	}

	if err := atomicWrite(s.stateFilePath(snap.RunID), data); err != nil {
		_ = os.RemoveAll(runDir)
		return fmt.Errorf("failed to create run '%s': %w", snap.RunID, err)
	}

	return nil
}

// Get loads a run snapshot by ID.
func (s *FileStore) Get(ctx context.Context, runID string) (*domain.Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if runID == "" {
		return nil, fmt.Errorf("failed to get run: run ID %w", forgeerrors.ErrEmptyValue)
	}

	runDir := s.runDir(runID)

	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to get run '%s': %w", runID, forgeerrors.ErrRunNotFound)
	}

	lockFile, err := s.acquireLock(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run '%s': %w", runID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := os.ReadFile(s.stateFilePath(runID)) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get run '%s': %w", runID, forgeerrors.ErrRunNotFound)
		}
		return nil, fmt.Errorf("failed to read run '%s': %w", runID, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse run '%s': corrupted state file: %w", runID, err)
	}

	return &snap, nil
}

// Update saves the current run snapshot (atomic write).
func (s *FileStore) Update(ctx context.Context, snap *domain.Snapshot) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if snap == nil {
		return fmt.Errorf("failed to update run: snapshot %w", forgeerrors.ErrEmptyValue)
	}
	if snap.RunID == "" {
		return fmt.Errorf("failed to update run: run ID %w", forgeerrors.ErrEmptyValue)
	}

	runDir := s.runDir(snap.RunID)

	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to update run '%s': %w", snap.RunID, forgeerrors.ErrRunNotFound)
	}

	lockFile, err := s.acquireLock(ctx, snap.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run '%s': %w", snap.RunID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to update run '%s': %w", snap.RunID, err)
	}

	if err := atomicWrite(s.stateFilePath(snap.RunID), data); err != nil {
		return fmt.Errorf("failed to update run '%s': %w", snap.RunID, err)
	}

	return nil
}

// List returns all run snapshots, sorted by save time (newest first).
func (s *FileStore) List(ctx context.Context) ([]*domain.Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	runsDir := s.runsDir()

	if _, err := os.Stat(runsDir); os.IsNotExist(err) {
		return []*domain.Snapshot{}, nil
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var (
		mu    sync.Mutex
		snaps = make([]*domain.Snapshot, 0, len(entries))
	)

	// Snapshots load independently, so read them concurrently. Directories
	// without a readable state file are skipped, not errors.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !validRunIDRegex.MatchString(entry.Name()) {
			continue
		}

		runID := entry.Name()
		g.Go(func() error {
			snap, err := s.Get(gctx, runID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			mu.Lock()
			snaps = append(snaps, snap)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].SavedAt.After(snaps[j].SavedAt)
	})

	return snaps, nil
}

// Delete removes a run and its state file.
func (s *FileStore) Delete(ctx context.Context, runID string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if runID == "" {
		return fmt.Errorf("failed to delete run: run ID %w", forgeerrors.ErrEmptyValue)
	}

	runDir := s.runDir(runID)

	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run '%s': %w", runID, forgeerrors.ErrRunNotFound)
	}

	lockFile, err := s.acquireLock(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run '%s': %w", runID, err)
	}
	// Release lock before removal since lock file is inside the run directory
	_ = s.releaseLock(lockFile)

	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("failed to delete run '%s': %w", runID, err)
	}

	return nil
}

// Helper methods for path construction

// runsDir returns the path to the runs directory.
func (s *FileStore) runsDir() string {
	return filepath.Join(s.forgeHome, constants.RunsDir)
}

// runDir returns the path to a specific run's directory.
func (s *FileStore) runDir(runID string) string {
	return filepath.Join(s.runsDir(), runID)
}

// stateFilePath returns the path to a run's state file.
func (s *FileStore) stateFilePath(runID string) string {
	return filepath.Join(s.runDir(runID), constants.StateFileName)
}

// lockFilePath returns the path to a run's lock file.
func (s *FileStore) lockFilePath(runID string) string {
	return filepath.Join(s.runDir(runID), constants.StateFileName+".lock")
}

// acquireLock acquires an exclusive file lock for the run.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileStore) acquireLock(ctx context.Context, runID string) (*os.File, error) {
	lockPath := s.lockFilePath(runID)

	if err := os.MkdirAll(s.runDir(runID), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed from validated name
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", forgeerrors.ErrLockTimeout)
		}

		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases a file lock.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}

	if err := flock.Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Ensure data is persisted before rename
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// GenerateRunID generates a run ID with format run-YYYYMMDD-HHMMSS.
// IDs generated within the same second will be identical; use
// GenerateRunIDUnique when an existing-ID set is available.
func GenerateRunID() string {
	now := time.Now().UTC()
	return fmt.Sprintf("run-%s-%s",
		now.Format("20060102"),
		now.Format("150405"))
}

// GenerateRunIDUnique generates a run ID, adding milliseconds if needed for
// uniqueness against the provided set. The Create method handles the actual
// uniqueness guarantee via filesystem checks.
func GenerateRunIDUnique(existingIDs map[string]bool) string {
	id := GenerateRunID()
	if !existingIDs[id] {
		return id
	}
	now := time.Now().UTC()
	return fmt.Sprintf("run-%s-%s-%03d",
		now.Format("20060102"),
		now.Format("150405"),
		now.Nanosecond()/1000000)
}
