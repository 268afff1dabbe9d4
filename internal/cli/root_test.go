package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with the given args and captures
// its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Keep logger side effects inside the test sandbox.
	t.Setenv("FORGE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2025-06-01"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommandShowsHelp(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "forge")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "status")
}

func TestRootCommandVersion(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc1234")
}

func TestRootCommandRejectsInvalidOutputFormat(t *testing.T) {
	_, err := executeCommand(t, "--output", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCommandVerboseQuietMutuallyExclusive(t *testing.T) {
	_, err := executeCommand(t, "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev (commit: none, built: unknown)", formatVersion(BuildInfo{}))
	assert.Equal(t, "1.0.0 (commit: deadbee, built: today)",
		formatVersion(BuildInfo{Version: "1.0.0", Commit: "deadbee", Date: "today"}))
}
