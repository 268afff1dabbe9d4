package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taggedResponse = `Here is the implementation.

<codeartifact type="python" filename="app/main.py" purpose="entry point">
print("hello")
</codeartifact>

<codeartifact type="json" filename="config.json" purpose="settings">
{"debug": false}
</codeartifact>
`

// newExtractCmd builds an isolated command tree carrying the global
// --output flag that runExtract reads.
func newExtractCmd(t *testing.T) (cmdRunner func(args ...string) (string, error)) {
	t.Helper()

	return func(args ...string) (string, error) {
		t.Setenv("FORGE_HOME", t.TempDir())

		flags := &GlobalFlags{}
		root := newRootCmd(flags, BuildInfo{})

		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs(append([]string{"extract"}, args...))

		err := root.Execute()
		return buf.String(), err
	}
}

func TestExtractListsArtifacts(t *testing.T) {
	run := newExtractCmd(t)

	input := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(input, []byte(taggedResponse), 0o600))

	out, err := run("--input", input)
	require.NoError(t, err)

	assert.Contains(t, out, "app/main.py")
	assert.Contains(t, out, "config.json")
	assert.Contains(t, out, "python")
}

func TestExtractMaterializes(t *testing.T) {
	run := newExtractCmd(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "response.txt")
	require.NoError(t, os.WriteFile(input, []byte(taggedResponse), 0o600))

	outDir := filepath.Join(dir, "out")
	out, err := run("--input", input, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	content, err := os.ReadFile(filepath.Join(outDir, "app", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print(\"hello\")", string(bytes.TrimSpace(content)))
}

func TestExtractFrontendFallback(t *testing.T) {
	run := newExtractCmd(t)

	response := "<file path=\"src/App.tsx\">\nexport default function App() { return null }\n</file>\n"
	input := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(input, []byte(response), 0o600))

	// Without --frontend the <file> tag is not recognized.
	out, err := run("--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "No artifacts found")

	out, err = run("--input", input, "--frontend")
	require.NoError(t, err)
	assert.Contains(t, out, "src/App.tsx")
}

func TestExtractMissingInputFile(t *testing.T) {
	run := newExtractCmd(t)

	_, err := run("--input", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
