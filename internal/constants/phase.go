package constants

// Phase represents a stage of the contract-first workflow.
// Phase values use snake_case for JSON serialization compatibility.
type Phase string

// Workflow phase constants define the fixed phase order:
//
//	Planning → SpecGeneration → BackendGeneration/FrontendGeneration → Validation → Completed
//
// The full legal-transition table lives in internal/workflow.
const (
	// PhasePlanning is the initial phase; the planner produces the project plan.
	PhasePlanning Phase = "planning"

	// PhaseSpecGeneration derives the API specification from the project plan.
	PhaseSpecGeneration Phase = "spec_generation"

	// PhaseBackendGeneration produces backend code artifacts from the API spec.
	PhaseBackendGeneration Phase = "backend_generation"

	// PhaseFrontendGeneration produces frontend code artifacts from the API spec.
	PhaseFrontendGeneration Phase = "frontend_generation"

	// PhaseValidation checks contract compliance across the generated outputs.
	PhaseValidation Phase = "validation"

	// PhaseCompleted indicates the workflow finished. Re-enterable back to
	// PhasePlanning to start a fresh run.
	PhaseCompleted Phase = "completed"

	// PhaseError indicates the workflow is parked in a failed state.
	// Recovery re-entry points are PhasePlanning and PhaseSpecGeneration.
	PhaseError Phase = "error"
)

// String returns the string representation of the Phase.
// This implements fmt.Stringer for convenient logging and debugging.
func (p Phase) String() string {
	return string(p)
}

// WorkflowStatus represents the coarse status of a workflow run.
type WorkflowStatus string

// Workflow status constants.
const (
	// StatusInitialized indicates a freshly created workflow with no transitions yet.
	StatusInitialized WorkflowStatus = "initialized"

	// StatusInProgress indicates the workflow has accepted at least one transition.
	StatusInProgress WorkflowStatus = "in_progress"

	// StatusWaitingForInput indicates the workflow is paused for caller input.
	StatusWaitingForInput WorkflowStatus = "waiting_for_input"

	// StatusCompleted indicates the workflow reached PhaseCompleted.
	StatusCompleted WorkflowStatus = "completed"

	// StatusFailed indicates an error was recorded; the next successful
	// transition returns the workflow to StatusInProgress.
	StatusFailed WorkflowStatus = "failed"
)

// String returns the string representation of the WorkflowStatus.
func (s WorkflowStatus) String() string {
	return string(s)
}

// TransitionType records how a phase transition was accepted.
type TransitionType string

// Transition type constants.
const (
	// TransitionValidated indicates the transition passed the edge-table and
	// precondition checks.
	TransitionValidated TransitionType = "validated"

	// TransitionAutomatic indicates an orchestrator-internal forced transition
	// that bypassed the edge-table check.
	TransitionAutomatic TransitionType = "automatic"
)

// ChangeType classifies an API specification revision.
type ChangeType string

// Change type constants. PlannerRegen and SpecRegen are domain aliases:
// a planner regeneration is a full contract reset (major), a spec
// regeneration changes the API contract only (minor).
const (
	ChangeMajor        ChangeType = "major"
	ChangeMinor        ChangeType = "minor"
	ChangePatch        ChangeType = "patch"
	ChangePlannerRegen ChangeType = "planner_regen"
	ChangeSpecRegen    ChangeType = "spec_regen"
)

// String returns the string representation of the ChangeType.
func (c ChangeType) String() string {
	return string(c)
}

// ErrorType classifies a workflow failure for the recovery coordinator.
type ErrorType string

// Error type constants.
const (
	// ErrorValidationFailure indicates a contract or schema validation failure.
	ErrorValidationFailure ErrorType = "validation_failure"

	// ErrorAgentError indicates an external agent call failed or returned garbage.
	ErrorAgentError ErrorType = "agent_error"

	// ErrorStateCorruption indicates the shared state failed an integrity check.
	ErrorStateCorruption ErrorType = "state_corruption"
)

// String returns the string representation of the ErrorType.
func (e ErrorType) String() string {
	return string(e)
}

// RecoveryAction selects how the coordinator reacts to a workflow error.
type RecoveryAction string

// Recovery action constants.
const (
	// RecoveryRetry leaves the phase unchanged; the caller re-invokes the
	// same phase's work with identical inputs.
	RecoveryRetry RecoveryAction = "retry"

	// RecoveryRegenerate forces the workflow back to spec generation for
	// validation failures, otherwise back to planning.
	RecoveryRegenerate RecoveryAction = "regenerate"

	// RecoveryRollback returns to the phase the workflow was in immediately
	// before its most recent transition.
	RecoveryRollback RecoveryAction = "rollback"
)

// String returns the string representation of the RecoveryAction.
func (a RecoveryAction) String() string {
	return string(a)
}

// AgentRole identifies a member of the code-generation team.
type AgentRole string

// Agent role constants, in workflow order.
const (
	RolePlanner       AgentRole = "planner"
	RoleSpecGenerator AgentRole = "api_spec_generator"
	RoleBackend       AgentRole = "backend"
	RoleFrontend      AgentRole = "frontend"
	RoleOrchestrator  AgentRole = "orchestrator"
)

// String returns the string representation of the AgentRole.
func (r AgentRole) String() string {
	return string(r)
}
