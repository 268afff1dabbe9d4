package constants

// Filesystem layout constants for the forge home directory (~/.forge).
const (
	// ForgeHome is the name of the forge home directory under $HOME.
	ForgeHome = ".forge"

	// RunsDir holds one subdirectory per workflow run.
	RunsDir = "runs"

	// LogsDir holds rotated log files.
	LogsDir = "logs"

	// LogFileName is the primary log file name.
	LogFileName = "forge.log"

	// StateFileName is the persisted shared-state snapshot inside a run directory.
	StateFileName = "state.json"

	// ConfigDirName is the per-project configuration directory.
	ConfigDirName = ".forge"

	// ConfigFileName is the configuration file name (global and per-project).
	ConfigFileName = "config.yaml"

	// GeneratedDir is the default output directory for materialized artifacts.
	GeneratedDir = "generated"

	// BackendSubdir is the default subdirectory for backend artifacts.
	BackendSubdir = "backend"

	// FrontendSubdir is the default subdirectory for frontend artifacts.
	FrontendSubdir = "frontend"
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)
