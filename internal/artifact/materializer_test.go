package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/domain"
)

func fixedClock() clock.Fixed {
	return clock.Fixed{Time: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMaterialize(t *testing.T) {
	t.Run("extract then materialize round-trips content", func(t *testing.T) {
		response := `<codeartifact type="python" filename="app/main.py" purpose="entry point">print("main")</codeartifact>
<codeartifact type="python" filename="app/models.py" purpose="models">print("models")</codeartifact>`

		artifacts := Extract(response)
		require.Len(t, artifacts, 2)

		base := t.TempDir()
		result := NewMaterializer(fixedClock()).Materialize(artifacts, base, ModeCreate)

		require.Len(t, result.CreatedFiles, 2)
		assert.False(t, result.Failed())

		data, err := os.ReadFile(filepath.Join(base, "app", "main.py"))
		require.NoError(t, err)
		assert.Equal(t, `print("main")`, string(data))

		data, err = os.ReadFile(filepath.Join(base, "app", "models.py"))
		require.NoError(t, err)
		assert.Equal(t, `print("models")`, string(data))
	})

	t.Run("directory creation is idempotent", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "nested/deep/file.txt", Content: "v1"},
		}

		base := t.TempDir()
		m := NewMaterializer(fixedClock())

		require.False(t, m.Materialize(artifacts, base, ModeCreate).Failed())
		require.False(t, m.Materialize(artifacts, base, ModeCreate).Failed())
	})

	t.Run("update mode backs up existing file", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "config.json", Content: "new"},
		}

		base := t.TempDir()
		target := filepath.Join(base, "config.json")
		require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

		result := NewMaterializer(fixedClock()).Materialize(artifacts, base, ModeUpdate)
		require.False(t, result.Failed())

		backup := target + ".backup.20250601_120000"
		assert.Equal(t, backup, result.Files[0].BackupPath)

		data, err := os.ReadFile(backup)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))

		data, err = os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("update mode without existing file writes with no backup", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "fresh.txt", Content: "content"},
		}

		base := t.TempDir()
		result := NewMaterializer(fixedClock()).Materialize(artifacts, base, ModeUpdate)

		require.False(t, result.Failed())
		assert.Empty(t, result.Files[0].BackupPath)
	})

	t.Run("append mode accumulates content", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "log.txt", Content: "line\n"},
		}

		base := t.TempDir()
		m := NewMaterializer(fixedClock())
		require.False(t, m.Materialize(artifacts, base, ModeAppend).Failed())
		require.False(t, m.Materialize(artifacts, base, ModeAppend).Failed())

		data, err := os.ReadFile(filepath.Join(base, "log.txt"))
		require.NoError(t, err)
		assert.Equal(t, "line\nline\n", string(data))
	})

	t.Run("one failure does not abort siblings", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "ok1.txt", Content: "a"},
			{Filename: "../escape.txt", Content: "b"},
			{Filename: "ok2.txt", Content: "c"},
		}

		base := t.TempDir()
		result := NewMaterializer(fixedClock()).Materialize(artifacts, base, ModeCreate)

		assert.True(t, result.Failed())
		require.Len(t, result.Files, 3)
		assert.Len(t, result.CreatedFiles, 2)
		assert.Empty(t, result.Files[0].Err)
		assert.NotEmpty(t, result.Files[1].Err)
		assert.Empty(t, result.Files[2].Err)

		_, err := os.Stat(filepath.Join(base, "ok2.txt"))
		assert.NoError(t, err)
	})

	t.Run("absolute filename rejected", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "/etc/passwd", Content: "nope"},
		}

		result := NewMaterializer(fixedClock()).Materialize(artifacts, t.TempDir(), ModeCreate)
		assert.True(t, result.Failed())
		assert.NotEmpty(t, result.Files[0].Err)
	})

	t.Run("empty content creates empty file", func(t *testing.T) {
		artifacts := []domain.CodeArtifact{
			{Filename: "empty.txt", Content: ""},
		}

		base := t.TempDir()
		result := NewMaterializer(fixedClock()).Materialize(artifacts, base, ModeCreate)
		require.False(t, result.Failed())

		info, err := os.Stat(filepath.Join(base, "empty.txt"))
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})
}
