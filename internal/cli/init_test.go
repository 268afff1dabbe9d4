package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})
}

func TestRunInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	var buf bytes.Buffer
	err := runInit(&buf, false)
	require.NoError(t, err)

	path := filepath.Join(dir, ".forge", "config.yaml")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "agent:")
	assert.Contains(t, string(content), "output:")
	assert.Contains(t, buf.String(), "Created")
}

func TestRunInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	var buf bytes.Buffer
	require.NoError(t, runInit(&buf, false))

	err := runInit(&buf, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRunInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	var buf bytes.Buffer
	require.NoError(t, runInit(&buf, false))
	require.NoError(t, runInit(&buf, true))
}
