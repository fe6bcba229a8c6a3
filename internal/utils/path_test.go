package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{
			name:      "empty path",
			input:     "",
			wantError: true,
		},
		{
			name:      "relative path",
			input:     "./test",
			wantError: false,
		},
		{
			name:      "absolute path",
			input:     "/tmp/test",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ResolvePath(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
			if !tt.wantError {
				assert.True(t, filepath.IsAbs(result), "ResolvePath(%q) = %q, want absolute", tt.input, result)
			}
		})
	}
}

func TestResolvePathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	result, err := ResolvePath("~/backups")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "backups"), result)
}

func TestEnsureDir(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b", "c")
		require.NoError(t, EnsureDir(dir))
		assert.True(t, DirExists(dir))
	})

	t.Run("existing directory is a no-op", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, EnsureDir(dir))
		assert.True(t, DirExists(dir))
	})

	t.Run("path occupied by a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "taken")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
		assert.Error(t, EnsureDir(file))
	})
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))
}

func TestIsWritable(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, IsWritable(dir))

	// IsWritable inspects mode bits, so this holds even when running as root
	readonly := filepath.Join(dir, "ro")
	require.NoError(t, os.Mkdir(readonly, 0o555))
	t.Cleanup(func() { _ = os.Chmod(readonly, 0o755) })
	assert.False(t, IsWritable(readonly))

	assert.False(t, IsWritable(filepath.Join(dir, "missing")))
}
