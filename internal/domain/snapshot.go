package domain

import "time"

// Snapshot is the wholesale serialization of one run's shared state: the
// five documents plus the revision history. Documents are carried as opaque
// JSON-compatible maps so a snapshot round-trips through any JSON store.
type Snapshot struct {
	// RunID identifies the workflow run this snapshot belongs to.
	RunID string `json:"run_id"`

	// Request is the natural-language product request that started the run.
	Request string `json:"request,omitempty"`

	// ProjectPlan is the stored plan document, nil if not yet written.
	ProjectPlan map[string]any `json:"project_plan,omitempty"`

	// APISpec is the stored spec document, nil if not yet written.
	APISpec map[string]any `json:"api_spec,omitempty"`

	// BackendReport is the stored backend report, nil if not yet written.
	BackendReport map[string]any `json:"backend_report,omitempty"`

	// FrontendReport is the stored frontend report, nil if not yet written.
	FrontendReport map[string]any `json:"frontend_report,omitempty"`

	// Workflow is the phase machine state with its histories.
	Workflow *WorkflowState `json:"workflow_state"`

	// SpecRevisionHistory is the append-only revision audit trail.
	SpecRevisionHistory []RevisionRecord `json:"api_spec_history"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `json:"saved_at"`

	// SchemaVersion enables forward-compatible snapshot migrations.
	SchemaVersion int `json:"schema_version"`
}
