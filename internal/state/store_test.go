package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
)

func fixedClock() clock.Fixed {
	return clock.Fixed{Time: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestUpdateProjectPlan(t *testing.T) {
	t.Run("valid JSON replaces plan wholesale", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		err := s.UpdateProjectPlan(`{"project_name":"shop","entities":[]}`, "planner")
		require.NoError(t, err)

		plan, err := s.GetProjectPlan()
		require.NoError(t, err)
		assert.Equal(t, "shop", plan["project_name"])
	})

	t.Run("invalid JSON leaves stored plan untouched", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		require.NoError(t, s.UpdateProjectPlan(`{"a":1}`, "planner"))

		err := s.UpdateProjectPlan(`not json`, "planner")
		require.Error(t, err)
		require.ErrorIs(t, err, forgeerrors.ErrContractFormat)

		plan, err := s.GetProjectPlan()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1)}, plan)
	})

	t.Run("markdown-wrapped payload rejected", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		err := s.UpdateProjectPlan("```json\n{\"a\":1}\n```", "planner")
		require.Error(t, err)
		assert.ErrorIs(t, err, forgeerrors.ErrContractFormat)
		assert.False(t, s.HasProjectPlan())
	})

	t.Run("non-object JSON rejected", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		err := s.UpdateProjectPlan(`[1,2,3]`, "planner")
		require.Error(t, err)
		assert.ErrorIs(t, err, forgeerrors.ErrContractFormat)
	})
}

func TestGetProjectPlan(t *testing.T) {
	t.Run("missing plan returns ErrDocumentNotFound", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		_, err := s.GetProjectPlan()
		require.Error(t, err)
		assert.ErrorIs(t, err, forgeerrors.ErrDocumentNotFound)
	})

	t.Run("returned plan is a copy", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())
		require.NoError(t, s.UpdateProjectPlan(`{"project_name":"shop"}`, "planner"))

		plan, err := s.GetProjectPlan()
		require.NoError(t, err)
		plan["project_name"] = "mutated"

		again, err := s.GetProjectPlan()
		require.NoError(t, err)
		assert.Equal(t, "shop", again["project_name"])
	})
}

func TestUpdateAPISpec(t *testing.T) {
	t.Run("first write starts at initial revision", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		rev, err := s.UpdateAPISpec(`{"openapi_spec":{"openapi":"3.1.0"}}`, constants.ChangePatch, "api_spec_generator")
		require.NoError(t, err)
		assert.Equal(t, "1.0.1", rev)

		spec, err := s.GetAPISpec()
		require.NoError(t, err)
		assert.Equal(t, "1.0.1", spec["revision"])
		assert.Equal(t, "api_spec_generator", spec["generated_by"])
		assert.Equal(t, "2025-06-01T12:00:00Z", spec["updated_at"])
	})

	t.Run("revisions are monotonic across change types", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		rev, err := s.UpdateAPISpec(`{"openapi_spec":{}}`, constants.ChangeMinor, "api_spec_generator")
		require.NoError(t, err)
		assert.Equal(t, "1.1.0", rev)

		rev, err = s.UpdateAPISpec(`{"openapi_spec":{}}`, constants.ChangePatch, "api_spec_generator")
		require.NoError(t, err)
		assert.Equal(t, "1.1.1", rev)

		rev, err = s.UpdateAPISpec(`{"openapi_spec":{}}`, constants.ChangeMajor, "api_spec_generator")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", rev)

		history := s.SpecRevisionHistory()
		require.Len(t, history, 3)
		assert.Equal(t, constants.ChangeMinor, history[0].ChangeType)
		assert.Equal(t, constants.ChangeMajor, history[2].ChangeType)
	})

	t.Run("rejected payload leaves spec and history untouched", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		_, err := s.UpdateAPISpec(`{"openapi_spec":{}}`, constants.ChangeMinor, "api_spec_generator")
		require.NoError(t, err)

		_, err = s.UpdateAPISpec("Here is the spec:\n```json\n{}\n```", constants.ChangeMinor, "api_spec_generator")
		require.Error(t, err)
		assert.ErrorIs(t, err, forgeerrors.ErrContractFormat)

		assert.Equal(t, "1.1.0", s.SpecRevision())
		assert.Len(t, s.SpecRevisionHistory(), 1)
	})
}

func TestUpdateReports(t *testing.T) {
	t.Run("backend report stamps attribution", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		err := s.UpdateBackendReport(`{"implemented_endpoints":[],"compliance_status":"full"}`, "backend")
		require.NoError(t, err)

		report, err := s.GetBackendReport()
		require.NoError(t, err)
		assert.Equal(t, "backend", report["updated_by"])
		assert.Equal(t, "2025-06-01T12:00:00Z", report["updated_at"])
	})

	t.Run("frontend report stamps attribution", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		err := s.UpdateFrontendReport(`{"implemented_components":[],"compliance_status":"partial"}`, "frontend")
		require.NoError(t, err)

		report, err := s.GetFrontendReport()
		require.NoError(t, err)
		assert.Equal(t, "frontend", report["updated_by"])
	})

	t.Run("missing reports return ErrDocumentNotFound", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		_, err := s.GetBackendReport()
		assert.ErrorIs(t, err, forgeerrors.ErrDocumentNotFound)

		_, err = s.GetFrontendReport()
		assert.ErrorIs(t, err, forgeerrors.ErrDocumentNotFound)
	})
}

func TestWorkflowMutations(t *testing.T) {
	t.Run("new store starts in planning, initialized", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		assert.Equal(t, constants.PhasePlanning, s.CurrentPhase())
		assert.Equal(t, constants.StatusInitialized, s.Status())
		assert.Empty(t, s.PhaseHistory())
	})

	t.Run("ApplyTransition moves phase and appends history", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())
		now := fixedClock().Now()

		s.ApplyTransition(domain.PhaseTransition{
			From:      constants.PhasePlanning,
			To:        constants.PhaseSpecGeneration,
			Timestamp: now,
			Type:      constants.TransitionValidated,
		}, constants.StatusInProgress)

		assert.Equal(t, constants.PhaseSpecGeneration, s.CurrentPhase())
		assert.Equal(t, constants.StatusInProgress, s.Status())

		history := s.PhaseHistory()
		require.Len(t, history, 1)
		assert.Equal(t, constants.PhasePlanning, history[0].From)
		assert.Equal(t, constants.TransitionValidated, history[0].Type)
	})

	t.Run("AppendError marks workflow failed", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		s.AppendError(domain.ErrorRecord{
			Timestamp: fixedClock().Now(),
			Phase:     constants.PhaseBackendGeneration,
			Type:      constants.ErrorAgentError,
			Message:   "agent timed out",
		})

		assert.Equal(t, constants.StatusFailed, s.Status())
		require.Len(t, s.ErrorHistory(), 1)
	})

	t.Run("accepted handoff marks workflow in progress", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		s.AppendHandoff(domain.HandoffRecord{
			Timestamp: fixedClock().Now(),
			FromAgent: constants.RolePlanner,
			ToAgent:   constants.RoleSpecGenerator,
			Phase:     constants.PhasePlanning,
			Accepted:  true,
		})

		assert.Equal(t, constants.StatusInProgress, s.Status())
		require.Len(t, s.HandoffHistory(), 1)
	})

	t.Run("rejected handoff is recorded without status change", func(t *testing.T) {
		s := New("run-20250601-120000", fixedClock())

		s.AppendHandoff(domain.HandoffRecord{
			Timestamp: fixedClock().Now(),
			FromAgent: constants.RoleBackend,
			ToAgent:   constants.RoleFrontend,
			Phase:     constants.PhaseBackendGeneration,
			Accepted:  false,
		})

		assert.Equal(t, constants.StatusInitialized, s.Status())
		require.Len(t, s.HandoffHistory(), 1)
	})
}

func TestSnapshotRestore(t *testing.T) {
	s := New("run-20250601-120000", fixedClock())
	s.SetRequest("build a todo app")
	require.NoError(t, s.UpdateProjectPlan(`{"project_name":"todo"}`, "planner"))

	_, err := s.UpdateAPISpec(`{"openapi_spec":{}}`, constants.ChangeMinor, "api_spec_generator")
	require.NoError(t, err)

	s.ApplyTransition(domain.PhaseTransition{
		From:      constants.PhasePlanning,
		To:        constants.PhaseSpecGeneration,
		Timestamp: fixedClock().Now(),
		Type:      constants.TransitionValidated,
	}, constants.StatusInProgress)

	snap := s.Snapshot()
	assert.Equal(t, "run-20250601-120000", snap.RunID)
	assert.Equal(t, constants.SnapshotSchemaVersion, snap.SchemaVersion)

	restored := New("run-other", fixedClock())
	restored.Restore(snap)

	assert.Equal(t, "run-20250601-120000", restored.RunID())
	assert.Equal(t, "build a todo app", restored.Request())
	assert.Equal(t, constants.PhaseSpecGeneration, restored.CurrentPhase())
	assert.Equal(t, "1.1.0", restored.SpecRevision())

	plan, err := restored.GetProjectPlan()
	require.NoError(t, err)
	assert.Equal(t, "todo", plan["project_name"])
}

func TestSummary(t *testing.T) {
	s := New("run-20250601-120000", fixedClock())

	out := s.Summary()
	assert.Contains(t, out, "Run ID:           run-20250601-120000")
	assert.Contains(t, out, "Project Plan:     missing")
	assert.Contains(t, out, "API Spec:         missing (v1.0.0)")
	assert.Contains(t, out, "Current Phase:    planning")

	require.NoError(t, s.UpdateProjectPlan(`{"project_name":"shop"}`, "planner"))

	out = s.Summary()
	assert.Contains(t, out, "Project Plan:     available")
}
