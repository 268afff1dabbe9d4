package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
)

// fakeRunLister serves canned snapshots for status tests.
type fakeRunLister struct {
	snaps []*domain.Snapshot
}

func (f *fakeRunLister) List(_ context.Context) ([]*domain.Snapshot, error) {
	return f.snaps, nil
}

func (f *fakeRunLister) Get(_ context.Context, runID string) (*domain.Snapshot, error) {
	for _, snap := range f.snaps {
		if snap.RunID == runID {
			return snap, nil
		}
	}
	return nil, forgeerrors.ErrRunNotFound
}

func testSnapshot(runID string, phase constants.Phase, status constants.WorkflowStatus) *domain.Snapshot {
	return &domain.Snapshot{
		RunID: runID,
		Workflow: &domain.WorkflowState{
			CurrentPhase: phase,
			Status:       status,
		},
		SavedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SchemaVersion: constants.SnapshotSchemaVersion,
	}
}

func TestListRunsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := listRuns(context.Background(), &buf, OutputText, &fakeRunLister{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No runs found")
}

func TestListRunsTable(t *testing.T) {
	t.Parallel()

	lister := &fakeRunLister{snaps: []*domain.Snapshot{
		testSnapshot("run-20250601-120000", constants.PhaseCompleted, constants.StatusCompleted),
		testSnapshot("run-20250601-110000", constants.PhaseValidation, constants.StatusFailed),
	}}

	var buf bytes.Buffer
	err := listRuns(context.Background(), &buf, OutputText, lister)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "run-20250601-120000")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "run-20250601-110000")
	assert.Contains(t, out, "failed")
}

func TestListRunsJSON(t *testing.T) {
	t.Parallel()

	lister := &fakeRunLister{snaps: []*domain.Snapshot{
		testSnapshot("run-20250601-120000", constants.PhasePlanning, constants.StatusInProgress),
	}}

	var buf bytes.Buffer
	err := listRuns(context.Background(), &buf, OutputJSON, lister)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "run-20250601-120000", decoded[0]["run_id"])
}

func TestShowRunSummary(t *testing.T) {
	t.Parallel()

	snap := testSnapshot("run-20250601-120000", constants.PhasePlanning, constants.StatusInProgress)
	lister := &fakeRunLister{snaps: []*domain.Snapshot{snap}}

	var buf bytes.Buffer
	err := showRun(context.Background(), &buf, OutputText, "run-20250601-120000", lister)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Shared State Summary")
	assert.Contains(t, out, "run-20250601-120000")
}

func TestShowRunNotFound(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := showRun(context.Background(), &buf, OutputText, "run-20990101-000000", &fakeRunLister{})
	require.Error(t, err)
	require.ErrorIs(t, err, forgeerrors.ErrRunNotFound)
}

func TestSpecRevisionOf(t *testing.T) {
	t.Parallel()

	snap := testSnapshot("run-20250601-120000", constants.PhaseSpecGeneration, constants.StatusInProgress)
	assert.Equal(t, "-", specRevisionOf(snap))

	snap.APISpec = map[string]any{"revision": "1.2.0"}
	assert.Equal(t, "1.2.0", specRevisionOf(snap))

	snap.APISpec = map[string]any{}
	assert.Equal(t, constants.InitialRevision, specRevisionOf(snap))
}
