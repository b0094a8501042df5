package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(dir))
	assert.True(t, IsDir(dir))

	// Second call is a no-op
	require.NoError(t, EnsureDir(dir))
	assert.NoError(t, EnsureDir(""))
}

func TestEnsureDir_UnderRegularFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.Error(t, EnsureDir(filepath.Join(file, "sub")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "exists.log")

	assert.False(t, FileExists(file))
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.True(t, FileExists(file))
	assert.False(t, IsDir(file))
}

func TestGetAbsolutePath(t *testing.T) {
	abs, err := GetAbsolutePath("x.log")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	same, err := GetAbsolutePath(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, same)
}
