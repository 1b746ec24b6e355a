package tools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("bin"), 0o755))
}

func TestLocate(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	touch(t, filepath.Join(second, "tools", "nested", DefaultExtractTool))
	touch(t, filepath.Join(first, "other.exe"))

	t.Run("finds nested file", func(t *testing.T) {
		t.Parallel()
		got, err := Locate(DefaultExtractTool, []string{first, second})
		require.NoError(t, err)
		require.Equal(t, filepath.Join(second, "tools", "nested", DefaultExtractTool), got)
	})

	t.Run("earlier directory wins", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		touch(t, filepath.Join(dir, DefaultExtractTool))
		got, err := Locate(DefaultExtractTool, []string{dir, second})
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, DefaultExtractTool), got)
	})

	t.Run("missing and empty directories are skipped", func(t *testing.T) {
		t.Parallel()
		got, err := Locate(DefaultExtractTool, []string{"", filepath.Join(first, "does-not-exist"), second})
		require.NoError(t, err)
		require.NotEmpty(t, got)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, err := Locate(DefaultCompileTool, []string{first, second})
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrToolNotFound))
	})

	t.Run("directory with tool name is ignored", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, DefaultCompileTool), 0o755))
		_, err := Locate(DefaultCompileTool, []string{dir})
		require.ErrorIs(t, err, ErrToolNotFound)
	})
}

func TestDefaultSearchDirs(t *testing.T) {
	dirs := DefaultSearchDirs("/out")
	require.NotEmpty(t, dirs)
	require.Equal(t, "/out", dirs[len(dirs)-1])
}
