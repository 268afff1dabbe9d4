// Package constants provides shared enums and defaults for FORGE.
//
// Import rules:
//   - CAN import: standard library only
//   - MUST NOT import: any other internal package
package constants

import "time"

// Defaults for agent invocation and workflow execution.
const (
	// DefaultAgentTimeout bounds a single external agent call.
	DefaultAgentTimeout = 10 * time.Minute

	// DefaultMaxRetries is the number of times a phase is retried after a
	// recoverable failure before the run is declared failed.
	DefaultMaxRetries = 2

	// InitialRevision is the revision assigned to an API spec that has never
	// been updated.
	InitialRevision = "1.0.0"

	// SnapshotSchemaVersion is the schema version stamped into persisted
	// run snapshots, enabling forward-compatible migrations.
	SnapshotSchemaVersion = 1
)

// BackupTimeFormat is the timestamp suffix appended to backup copies made by
// the artifact materializer before overwriting an existing file.
const BackupTimeFormat = "20060102_150405"
