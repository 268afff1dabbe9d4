// Package state implements the shared state store: the single source of
// truth all agents read and write during a workflow run. The store owns the
// project plan, API spec, backend/frontend reports, and workflow state, and
// is the only mutation point for them.
//
// Every update validates its payload first and then replaces the stored
// document wholesale; there is no partial in-place field mutation. A mutex
// guards each operation so the "no partial write observed" guarantee holds
// even if the surrounding runtime drives phases concurrently.
package state

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/contract"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
	"github.com/forgeworks/forge/internal/revision"
)

// Store holds all shared documents for one workflow run.
type Store struct {
	mu    sync.Mutex
	clock clock.Clock

	runID   string
	request string

	plan          map[string]any
	planUpdatedAt time.Time
	planUpdatedBy string

	spec        map[string]any
	specHistory []domain.RevisionRecord

	backendReport  map[string]any
	frontendReport map[string]any

	workflow *domain.WorkflowState
}

// New creates an empty Store for the given run ID. The workflow starts in
// the planning phase with status initialized.
func New(runID string, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Store{
		clock:       clk,
		runID:       runID,
		specHistory: []domain.RevisionRecord{},
		workflow:    domain.NewWorkflowState(),
	}
}

// RunID returns the run identifier this store belongs to.
func (s *Store) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// SetRequest records the natural-language product request that started the run.
func (s *Store) SetRequest(request string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = request
}

// Request returns the product request for this run.
func (s *Store) Request() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request
}

// gate runs the shared validation gate for contract-critical writes:
// markdown scan first, then strict JSON parse. Returns the parsed document
// or a typed error; the store is untouched on failure.
func gate(doc, payload string) (map[string]any, error) {
	if contract.HasMarkdownOrCommentary(payload) {
		return nil, fmt.Errorf("%s contains markdown or commentary, JSON only: %w",
			doc, forgeerrors.ErrContractFormat)
	}

	res := contract.ValidateJSON(payload)
	if !res.Valid {
		return nil, fmt.Errorf("%s: %s: %w", doc, res.Err, forgeerrors.ErrContractFormat)
	}

	obj, ok := res.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a JSON object: %w", doc, forgeerrors.ErrContractFormat)
	}
	return obj, nil
}

// UpdateProjectPlan validates planJSON and, on success, replaces the stored
// plan wholesale and records the update timestamp and agent attribution.
// On failure the stored plan is untouched.
func (s *Store) UpdateProjectPlan(planJSON, updatedBy string) error {
	obj, err := gate("project plan", planJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = obj
	s.planUpdatedAt = s.clock.Now().UTC()
	s.planUpdatedBy = updatedBy
	return nil
}

// GetProjectPlan returns a copy of the stored plan, or ErrDocumentNotFound
// if no plan has been written.
func (s *Store) GetProjectPlan() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return nil, fmt.Errorf("project plan: %w", forgeerrors.ErrDocumentNotFound)
	}
	return copyDoc(s.plan), nil
}

// HasProjectPlan reports whether a non-empty plan is stored.
func (s *Store) HasProjectPlan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plan) > 0
}

// UpdateAPISpec validates specJSON and, on success, computes the next
// revision from the change type, stamps revision/generated_by/updated_at
// into the document, appends a revision-history record, and replaces the
// stored spec wholesale. Returns the new revision string.
//
// On validation failure the stored spec and its history are untouched and a
// typed error is returned; there is no partial write.
func (s *Store) UpdateAPISpec(specJSON string, change constants.ChangeType, updatedBy string) (string, error) {
	obj, err := gate("api spec", specJSON)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := constants.InitialRevision
	if s.spec != nil {
		if rev, ok := s.spec["revision"].(string); ok && rev != "" {
			current = rev
		}
	}

	now := s.clock.Now().UTC()
	next := revision.Increment(current, change)

	obj["revision"] = next
	obj["generated_by"] = updatedBy
	obj["updated_at"] = now.Format(time.RFC3339)

	record := revision.NewRecord(now, updatedBy, change,
		fmt.Sprintf("API specification updated to v%s", next))

	s.spec = obj
	s.specHistory = append(s.specHistory, record)
	return next, nil
}

// GetAPISpec returns a copy of the stored spec, or ErrDocumentNotFound if
// no spec has been written.
func (s *Store) GetAPISpec() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == nil {
		return nil, fmt.Errorf("api spec: %w", forgeerrors.ErrDocumentNotFound)
	}
	return copyDoc(s.spec), nil
}

// HasAPISpec reports whether a non-empty spec is stored.
func (s *Store) HasAPISpec() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spec) > 0
}

// SpecRevision returns the current spec revision, or the initial revision
// if no spec has been written.
func (s *Store) SpecRevision() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec != nil {
		if rev, ok := s.spec["revision"].(string); ok && rev != "" {
			return rev
		}
	}
	return constants.InitialRevision
}

// SpecRevisionHistory returns a copy of the ordered revision audit trail.
func (s *Store) SpecRevisionHistory() []domain.RevisionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.RevisionRecord, len(s.specHistory))
	copy(out, s.specHistory)
	return out
}

// UpdateBackendReport validates reportJSON and, on success, stamps
// updated_at/updated_by and replaces the stored backend report wholesale.
func (s *Store) UpdateBackendReport(reportJSON, updatedBy string) error {
	obj, err := gate("backend report", reportJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj["updated_at"] = s.clock.Now().UTC().Format(time.RFC3339)
	obj["updated_by"] = updatedBy
	s.backendReport = obj
	return nil
}

// GetBackendReport returns a copy of the stored backend report, or
// ErrDocumentNotFound if no report has been written.
func (s *Store) GetBackendReport() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backendReport == nil {
		return nil, fmt.Errorf("backend report: %w", forgeerrors.ErrDocumentNotFound)
	}
	return copyDoc(s.backendReport), nil
}

// UpdateFrontendReport validates reportJSON and, on success, stamps
// updated_at/updated_by and replaces the stored frontend report wholesale.
func (s *Store) UpdateFrontendReport(reportJSON, updatedBy string) error {
	obj, err := gate("frontend report", reportJSON)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj["updated_at"] = s.clock.Now().UTC().Format(time.RFC3339)
	obj["updated_by"] = updatedBy
	s.frontendReport = obj
	return nil
}

// GetFrontendReport returns a copy of the stored frontend report, or
// ErrDocumentNotFound if no report has been written.
func (s *Store) GetFrontendReport() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frontendReport == nil {
		return nil, fmt.Errorf("frontend report: %w", forgeerrors.ErrDocumentNotFound)
	}
	return copyDoc(s.frontendReport), nil
}

// CurrentPhase returns the workflow's current phase.
func (s *Store) CurrentPhase() constants.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.CurrentPhase
}

// Status returns the workflow's coarse status.
func (s *Store) Status() constants.WorkflowStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.Status
}

// PhaseHistory returns a copy of the append-only transition history.
func (s *Store) PhaseHistory() []domain.PhaseTransition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PhaseTransition, len(s.workflow.PhaseHistory))
	copy(out, s.workflow.PhaseHistory)
	return out
}

// ErrorHistory returns a copy of the append-only error history.
func (s *Store) ErrorHistory() []domain.ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ErrorRecord, len(s.workflow.ErrorHistory))
	copy(out, s.workflow.ErrorHistory)
	return out
}

// HandoffHistory returns a copy of the append-only handoff history.
func (s *Store) HandoffHistory() []domain.HandoffRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.HandoffRecord, len(s.workflow.HandoffHistory))
	copy(out, s.workflow.HandoffHistory)
	return out
}

// ApplyTransition is the phase state machine's mutation point: it moves the
// workflow to the transition's target phase, sets the given status, appends
// the record to phase_history, and bumps last_phase_update. All transition
// legality checks happen in the machine before this is called.
func (s *Store) ApplyTransition(t domain.PhaseTransition, status constants.WorkflowStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.CurrentPhase = t.To
	s.workflow.Status = status
	s.workflow.LastPhaseUpdate = t.Timestamp
	s.workflow.PhaseHistory = append(s.workflow.PhaseHistory, t)
}

// AppendError appends a record to error_history and sets the workflow
// status to failed. The next accepted transition returns the status to
// in_progress.
func (s *Store) AppendError(rec domain.ErrorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.ErrorHistory = append(s.workflow.ErrorHistory, rec)
	s.workflow.Status = constants.StatusFailed
}

// AppendHandoff appends a record to handoff_history. Accepted handoffs mark
// the workflow in progress; rejected handoffs leave the status alone.
func (s *Store) AppendHandoff(rec domain.HandoffRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.HandoffHistory = append(s.workflow.HandoffHistory, rec)
	if rec.Accepted {
		s.workflow.Status = constants.StatusInProgress
	}
}

// Summary returns a human-readable status of all five documents: presence
// or absence plus the current revision. This is a diagnostic read, not used
// for control flow.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := func(doc map[string]any) string {
		if len(doc) > 0 {
			return "available"
		}
		return "missing"
	}

	var b strings.Builder
	b.WriteString("Shared State Summary\n")
	b.WriteString("====================\n")
	fmt.Fprintf(&b, "Run ID:           %s\n", s.runID)
	fmt.Fprintf(&b, "Project Plan:     %s\n", present(s.plan))
	fmt.Fprintf(&b, "API Spec:         %s (v%s)\n", present(s.spec), s.specRevisionLocked())
	fmt.Fprintf(&b, "Backend Report:   %s\n", present(s.backendReport))
	fmt.Fprintf(&b, "Frontend Report:  %s\n", present(s.frontendReport))
	fmt.Fprintf(&b, "Revision History: %d entries\n", len(s.specHistory))
	fmt.Fprintf(&b, "Current Phase:    %s\n", s.workflow.CurrentPhase)
	fmt.Fprintf(&b, "Workflow Status:  %s\n", s.workflow.Status)
	return b.String()
}

// specRevisionLocked returns the current revision. Caller must hold s.mu.
func (s *Store) specRevisionLocked() string {
	if s.spec != nil {
		if rev, ok := s.spec["revision"].(string); ok && rev != "" {
			return rev
		}
	}
	return constants.InitialRevision
}

// Snapshot serializes the full shared state for persistence.
func (s *Store) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]domain.RevisionRecord, len(s.specHistory))
	copy(history, s.specHistory)

	wf := *s.workflow
	wf.PhaseHistory = append([]domain.PhaseTransition{}, s.workflow.PhaseHistory...)
	wf.ErrorHistory = append([]domain.ErrorRecord{}, s.workflow.ErrorHistory...)
	wf.HandoffHistory = append([]domain.HandoffRecord{}, s.workflow.HandoffHistory...)

	return &domain.Snapshot{
		RunID:               s.runID,
		Request:             s.request,
		ProjectPlan:         copyDoc(s.plan),
		APISpec:             copyDoc(s.spec),
		BackendReport:       copyDoc(s.backendReport),
		FrontendReport:      copyDoc(s.frontendReport),
		Workflow:            &wf,
		SpecRevisionHistory: history,
		SavedAt:             s.clock.Now().UTC(),
		SchemaVersion:       constants.SnapshotSchemaVersion,
	}
}

// Restore replaces the store's contents with a previously saved snapshot.
func (s *Store) Restore(snap *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runID = snap.RunID
	s.request = snap.Request
	s.plan = copyDoc(snap.ProjectPlan)
	s.spec = copyDoc(snap.APISpec)
	s.backendReport = copyDoc(snap.BackendReport)
	s.frontendReport = copyDoc(snap.FrontendReport)
	s.specHistory = append([]domain.RevisionRecord{}, snap.SpecRevisionHistory...)

	if snap.Workflow != nil {
		wf := *snap.Workflow
		s.workflow = &wf
	} else {
		s.workflow = domain.NewWorkflowState()
	}
}

// copyDoc deep-copies a JSON-compatible document so callers cannot reach
// into stored state. Documents are JSON-safe by construction (they came
// through the gate), so the round-trip cannot fail.
func copyDoc(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
