package domain

import (
	"time"

	"github.com/forgeworks/forge/internal/constants"
)

// WorkflowState tracks the phase machine and its audit trails for one
// workflow run.
//
// Invariant: CurrentPhase changes only via the phase state machine's
// legal-transition table (or its explicit forced-transition escape hatch);
// the three histories are append-only and never truncated during a session.
// Append order IS the record of what happened; timestamps are metadata, not
// an ordering key.
type WorkflowState struct {
	// CurrentPhase is the phase the workflow is currently in.
	CurrentPhase constants.Phase `json:"current_phase"`

	// Status is the coarse workflow status.
	Status constants.WorkflowStatus `json:"workflow_status"`

	// LastPhaseUpdate is when the phase last changed.
	LastPhaseUpdate time.Time `json:"last_phase_update"`

	// PhaseHistory is the append-only record of accepted transitions.
	PhaseHistory []PhaseTransition `json:"phase_history"`

	// ErrorHistory is the append-only record of workflow errors.
	ErrorHistory []ErrorRecord `json:"error_history"`

	// HandoffHistory is the append-only record of agent handoffs.
	HandoffHistory []HandoffRecord `json:"handoff_history"`
}

// PhaseTransition is one accepted phase transition.
type PhaseTransition struct {
	// From is the phase the workflow left.
	From constants.Phase `json:"from_phase"`

	// To is the phase the workflow entered.
	To constants.Phase `json:"to_phase"`

	// Timestamp is when the transition was applied.
	Timestamp time.Time `json:"timestamp"`

	// Type records whether the transition was validated or forced.
	Type constants.TransitionType `json:"transition_type"`
}

// ErrorRecord is one entry in the error history.
type ErrorRecord struct {
	// Timestamp is when the error was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Phase is the phase the workflow was in when the error occurred.
	Phase constants.Phase `json:"phase"`

	// Type classifies the error.
	Type constants.ErrorType `json:"error_type"`

	// Message is the detailed error message.
	Message string `json:"error_message"`

	// RecoveryAction is the recovery chosen for this error.
	RecoveryAction constants.RecoveryAction `json:"recovery_action"`
}

// HandoffRecord is one entry in the agent handoff history. A record is
// appended for every handoff attempt, accepted or rejected.
type HandoffRecord struct {
	// Timestamp is when the handoff was attempted.
	Timestamp time.Time `json:"timestamp"`

	// FromAgent names the agent completing its task.
	FromAgent constants.AgentRole `json:"from_agent"`

	// ToAgent names the agent receiving the handoff.
	ToAgent constants.AgentRole `json:"to_agent"`

	// Phase is the phase at the time of handoff.
	Phase constants.Phase `json:"phase"`

	// DataIncluded is true when the handoff carried a payload.
	DataIncluded bool `json:"data_included"`

	// Accepted is false when the payload failed JSON validation.
	Accepted bool `json:"accepted"`
}

// NewWorkflowState returns a WorkflowState at the initial phase with empty,
// non-nil histories.
func NewWorkflowState() *WorkflowState {
	return &WorkflowState{
		CurrentPhase:   constants.PhasePlanning,
		Status:         constants.StatusInitialized,
		PhaseHistory:   []PhaseTransition{},
		ErrorHistory:   []ErrorRecord{},
		HandoffHistory: []HandoffRecord{},
	}
}
