package domain

import (
	"time"

	"github.com/forgeworks/forge/internal/constants"
)

// APISpec is the technical contract produced by the spec-generation phase.
// The nested specification document (paths, schemas, security schemes) is
// opaque to the orchestration core: it is validated as JSON and passed
// through untouched.
//
// Invariant: Revision strictly increases (lexicographic by
// major.minor.patch) on every accepted update; a failed validation never
// mutates the stored spec.
type APISpec struct {
	// OpenAPISpec is the opaque validated specification document.
	OpenAPISpec map[string]any `json:"openapi_spec"`

	// Revision is the semantic version of the contract.
	Revision string `json:"revision"`

	// ValidationReport records the structural pass/fail for this revision.
	ValidationReport *ValidationReport `json:"validation_report,omitempty"`

	// GeneratedBy identifies the agent that produced this revision.
	GeneratedBy string `json:"generated_by,omitempty"`

	// UpdatedAt is when this revision was accepted.
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidationReport is a structured pass/fail result with every issue found,
// not just the first, so the producing agent can correct all issues in one
// retry.
type ValidationReport struct {
	// Valid is true when no issues were found.
	Valid bool `json:"valid"`

	// Issues lists every violation found.
	Issues []string `json:"issues,omitempty"`
}

// RevisionRecord is one entry in the API spec revision history.
type RevisionRecord struct {
	// Timestamp is when the revision was created.
	Timestamp time.Time `json:"timestamp"`

	// Actor names the agent that made the change.
	Actor string `json:"actor"`

	// ChangeType classifies the revision (major, minor, patch, or an alias).
	ChangeType constants.ChangeType `json:"change_type"`

	// Description explains the change.
	Description string `json:"description"`

	// RevisionID uniquely identifies this record within a session.
	RevisionID string `json:"revision_id"`
}
