package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// WriteMode selects how the Materializer treats existing target files.
type WriteMode string

// Write mode constants.
const (
	// ModeCreate truncate-writes the target with no backup.
	ModeCreate WriteMode = "create"

	// ModeUpdate backs up an existing target to a timestamp-suffixed copy
	// before truncate-writing.
	ModeUpdate WriteMode = "update"

	// ModeAppend appends to the target with no backup.
	ModeAppend WriteMode = "append"
)

// FileResult records the outcome of materializing one artifact.
type FileResult struct {
	// Path is the absolute target path.
	Path string `json:"path"`

	// Filename is the artifact's relative filename.
	Filename string `json:"filename"`

	// Type is the artifact's type tag.
	Type string `json:"type"`

	// Purpose carries the artifact's purpose text for reporting.
	Purpose string `json:"purpose"`

	// BackupPath is set when an existing file was backed up before the write.
	BackupPath string `json:"backup_path,omitempty"`

	// Err holds the write failure for this file, empty on success.
	Err string `json:"error,omitempty"`
}

// Result aggregates a materialization batch.
type Result struct {
	// CreatedFiles lists successfully written paths in input order.
	CreatedFiles []string `json:"created_files"`

	// Files holds per-file metadata for every artifact, including failures.
	Files []FileResult `json:"files"`
}

// Failed reports whether any file in the batch failed to write.
func (r *Result) Failed() bool {
	return len(r.CreatedFiles) < len(r.Files)
}

// Materializer writes extracted artifacts to disk under a base directory.
type Materializer struct {
	clock clock.Clock
}

// NewMaterializer creates a Materializer. A nil clock falls back to the
// system clock.
func NewMaterializer(clk clock.Clock) *Materializer {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Materializer{clock: clk}
}

// Materialize writes each artifact to baseDir/filename in input order.
// Parent directories are created as needed; directory creation is
// idempotent. One artifact's write failure is recorded in its FileResult
// and does not abort the remaining artifacts.
func (m *Materializer) Materialize(artifacts []domain.CodeArtifact, baseDir string, mode WriteMode) *Result {
	result := &Result{
		CreatedFiles: []string{},
		Files:        make([]FileResult, 0, len(artifacts)),
	}

	for _, a := range artifacts {
		fr := FileResult{
			Filename: a.Filename,
			Type:     a.Type,
			Purpose:  a.Purpose,
		}

		target, err := m.resolveTarget(baseDir, a.Filename)
		if err != nil {
			fr.Err = err.Error()
			result.Files = append(result.Files, fr)
			continue
		}
		fr.Path = target

		if err := m.writeArtifact(&fr, target, a.Content, mode); err != nil {
			fr.Err = err.Error()
			result.Files = append(result.Files, fr)
			continue
		}

		result.CreatedFiles = append(result.CreatedFiles, target)
		result.Files = append(result.Files, fr)
	}

	return result
}

// resolveTarget joins baseDir and filename, rejecting paths that would
// escape the base directory.
func (m *Materializer) resolveTarget(baseDir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("artifact filename %w", forgeerrors.ErrEmptyValue)
	}
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("artifact filename '%s': %w", filename, forgeerrors.ErrPathTraversal)
	}

	target := filepath.Join(baseDir, filepath.FromSlash(filename))

	// Join cleans the path; anything still outside baseDir was a traversal.
	rel, err := filepath.Rel(baseDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("artifact filename '%s': %w", filename, forgeerrors.ErrPathTraversal)
	}

	return target, nil
}

// writeArtifact performs the backup-then-write for a single target.
func (m *Materializer) writeArtifact(fr *FileResult, target, content string, mode WriteMode) error {
	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return fmt.Errorf("create parent directories: %w: %v", forgeerrors.ErrArtifactIO, err)
	}

	if mode == ModeUpdate {
		backup, err := m.backupExisting(target)
		if err != nil {
			return err
		}
		fr.BackupPath = backup
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == ModeAppend {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := os.OpenFile(target, flags, filePerm) //#nosec G304 -- path is validated against the base directory
	if err != nil {
		return fmt.Errorf("open '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}

	return nil
}

// backupExisting copies the target to a timestamp-suffixed backup path if
// it exists. Returns the backup path, or empty when there was nothing to
// back up.
func (m *Materializer) backupExisting(target string) (string, error) {
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return "", nil
	}

	backup := fmt.Sprintf("%s.backup.%s", target, m.clock.Now().UTC().Format(constants.BackupTimeFormat))

	src, err := os.Open(target) //#nosec G304 -- path is validated against the base directory
	if err != nil {
		return "", fmt.Errorf("backup '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(backup, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- derived from a validated path
	if err != nil {
		return "", fmt.Errorf("backup '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("backup '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}

	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("backup '%s': %w: %v", target, forgeerrors.ErrArtifactIO, err)
	}

	return backup, nil
}
