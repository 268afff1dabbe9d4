// Package errors provides centralized error handling for FORGE.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrContractFormat indicates text failed the JSON parse or contained
	// markdown/commentary. The offending write is rejected; state is untouched.
	ErrContractFormat = errors.New("contract format violation")

	// ErrSchemaViolation indicates valid JSON that fails structural schema
	// checks (missing required field, bad enum value).
	ErrSchemaViolation = errors.New("schema violation")

	// ErrIllegalTransition indicates a requested phase transition is not in
	// the legal-edge table or a phase-entry precondition is unmet.
	ErrIllegalTransition = errors.New("illegal phase transition")

	// ErrPreconditionUnmet indicates a required upstream document is missing
	// for the target phase.
	ErrPreconditionUnmet = errors.New("phase precondition unmet")

	// ErrDocumentNotFound indicates a shared-state document has not been
	// written yet.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrArtifactIO indicates a single artifact file failed to write.
	// Isolated per file; never aborts sibling artifacts.
	ErrArtifactIO = errors.New("artifact write failed")

	// ErrAgentInvocation indicates the external agent call failed to execute
	// or returned a non-zero exit code.
	ErrAgentInvocation = errors.New("agent invocation failed")

	// ErrHandoffRejected indicates an agent handoff carried malformed data.
	ErrHandoffRejected = errors.New("handoff rejected")

	// ErrWorkflowFailed indicates the workflow exhausted its recovery budget.
	ErrWorkflowFailed = errors.New("workflow failed")

	// ErrRunNotFound indicates the persisted run does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExists indicates a run with the same ID already exists.
	ErrRunExists = errors.New("run already exists")

	// ErrLockTimeout indicates a file lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrPathTraversal indicates a filename attempted to escape its base directory.
	ErrPathTraversal = errors.New("path traversal not allowed")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidAgent indicates an invalid agent configuration value.
	ErrConfigInvalidAgent = errors.New("invalid agent configuration")

	// ErrConfigInvalidOutput indicates an invalid output configuration value.
	ErrConfigInvalidOutput = errors.New("invalid output configuration")

	// ErrConfigInvalidWorkflow indicates an invalid workflow configuration value.
	ErrConfigInvalidWorkflow = errors.New("invalid workflow configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrUnknownRole indicates a script fixture has no response for the
	// requested agent role.
	ErrUnknownRole = errors.New("unknown agent role")
)
