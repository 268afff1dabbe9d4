package domain

import "time"

// BackendReport is the agent-produced status document for the backend
// generation phase. It is created empty at workflow start and overwritten
// wholesale on each successful agent report, never merged field by field.
type BackendReport struct {
	// ImplementedEndpoints lists the endpoints the backend claims to implement.
	ImplementedEndpoints []string `json:"implemented_endpoints"`

	// GeneratedFiles lists the materialized file paths, in creation order.
	GeneratedFiles []string `json:"generated_files,omitempty"`

	// ComplianceStatus is the contract compliance verdict
	// (e.g. "pending", "compliant", "non_compliant").
	ComplianceStatus string `json:"compliance_status"`

	// UpdatedAt is when the report was accepted.
	UpdatedAt time.Time `json:"updated_at"`

	// UpdatedBy identifies the agent that produced the report.
	UpdatedBy string `json:"updated_by,omitempty"`
}

// FrontendReport is the agent-produced status document for the frontend
// generation phase. Same lifecycle as BackendReport.
type FrontendReport struct {
	// ImplementedComponents lists the UI components the frontend claims to implement.
	ImplementedComponents []string `json:"implemented_components"`

	// GeneratedFiles lists the materialized file paths, in creation order.
	GeneratedFiles []string `json:"generated_files,omitempty"`

	// ComplianceStatus is the contract compliance verdict.
	ComplianceStatus string `json:"compliance_status"`

	// UpdatedAt is when the report was accepted.
	UpdatedAt time.Time `json:"updated_at"`

	// UpdatedBy identifies the agent that produced the report.
	UpdatedBy string `json:"updated_by,omitempty"`
}
