package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/stretchr/testify/require"
)

// SetupLibrary creates a temporary directory and opens a writable blueprint
// library in it. It returns the absolute path to the temp dir and the library.
// It fails the test immediately on error.
func SetupLibrary(t *testing.T) (string, *loam.Library) {
	t.Helper()

	// Loam sometimes prefers absolute paths, though t.TempDir usually returns one.
	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	lib, err := loam.Open(absPath, false)
	require.NoError(t, err, "Failed to open blueprint library")

	return absPath, lib
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
