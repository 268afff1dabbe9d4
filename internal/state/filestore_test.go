package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
)

func testSnapshot(runID string, savedAt time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		RunID:               runID,
		Request:             "build a todo app",
		Workflow:            domain.NewWorkflowState(),
		SpecRevisionHistory: []domain.RevisionRecord{},
		SavedAt:             savedAt,
	}
}

func TestFileStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("run-20250601-120000", time.Now().UTC())
	require.NoError(t, store.Create(ctx, snap))

	got, err := store.Get(ctx, "run-20250601-120000")
	require.NoError(t, err)
	assert.Equal(t, "run-20250601-120000", got.RunID)
	assert.Equal(t, "build a todo app", got.Request)
	assert.Equal(t, constants.SnapshotSchemaVersion, got.SchemaVersion)
	assert.Equal(t, constants.PhasePlanning, got.Workflow.CurrentPhase)
}

func TestFileStoreCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("run-20250601-120000", time.Now().UTC())
	require.NoError(t, store.Create(ctx, snap))

	err = store.Create(ctx, snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, forgeerrors.ErrRunExists)
}

func TestFileStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "run-20250601-999999")
	require.Error(t, err)
	assert.ErrorIs(t, err, forgeerrors.ErrRunNotFound)
}

func TestFileStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	t.Run("missing run", func(t *testing.T) {
		err := store.Update(ctx, testSnapshot("run-20250601-130000", time.Now().UTC()))
		require.Error(t, err)
		assert.ErrorIs(t, err, forgeerrors.ErrRunNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		snap := testSnapshot("run-20250601-120000", time.Now().UTC())
		require.NoError(t, store.Create(ctx, snap))

		snap.ProjectPlan = map[string]any{"project_name": "todo"}
		require.NoError(t, store.Update(ctx, snap))

		got, err := store.Get(ctx, snap.RunID)
		require.NoError(t, err)
		assert.Equal(t, "todo", got.ProjectPlan["project_name"])
	})
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	store, err := NewFileStore(home)
	require.NoError(t, err)

	t.Run("empty runs directory", func(t *testing.T) {
		snaps, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, snaps)
	})

	t.Run("sorted newest first, invalid dirs skipped", func(t *testing.T) {
		older := testSnapshot("run-20250601-110000", time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC))
		newer := testSnapshot("run-20250601-120000", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, store.Create(ctx, older))
		require.NoError(t, store.Create(ctx, newer))

		// Directories that don't match the run ID format are ignored.
		require.NoError(t, os.MkdirAll(filepath.Join(home, constants.RunsDir, "not-a-run"), 0o750))

		snaps, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, "run-20250601-120000", snaps[0].RunID)
		assert.Equal(t, "run-20250601-110000", snaps[1].RunID)
	})
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("run-20250601-120000", time.Now().UTC())
	require.NoError(t, store.Create(ctx, snap))
	require.NoError(t, store.Delete(ctx, snap.RunID))

	_, err = store.Get(ctx, snap.RunID)
	assert.ErrorIs(t, err, forgeerrors.ErrRunNotFound)

	err = store.Delete(ctx, snap.RunID)
	assert.ErrorIs(t, err, forgeerrors.ErrRunNotFound)
}

func TestFileStoreCorruptedState(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	store, err := NewFileStore(home)
	require.NoError(t, err)

	runID := "run-20250601-120000"
	runDir := filepath.Join(home, constants.RunsDir, runID)
	require.NoError(t, os.MkdirAll(runDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, constants.StateFileName), []byte("{truncated"), 0o600))

	_, err = store.Get(ctx, runID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted state file")
}

func TestFileStoreContextCancellation(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Create(ctx, testSnapshot("run-20250601-120000", time.Now().UTC())), context.Canceled)

	_, err = store.Get(ctx, "run-20250601-120000")
	require.ErrorIs(t, err, context.Canceled)

	_, err = store.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	assert.Regexp(t, `^run-\d{8}-\d{6}$`, id)

	t.Run("unique adds millisecond suffix on collision", func(t *testing.T) {
		existing := map[string]bool{GenerateRunID(): true}
		id := GenerateRunIDUnique(existing)
		assert.Regexp(t, `^run-\d{8}-\d{6}-\d{3}$`, id)
	})
}
