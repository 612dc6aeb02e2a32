package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbitrollup/batch-submitter/util"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	require.True(t, util.FileExists(dir))

	f := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))
	require.True(t, util.FileExists(f))

	require.False(t, util.FileExists(filepath.Join(dir, "absent")))
}

func TestMakeDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, util.MakeDirectory(dir))
	require.True(t, util.FileExists(dir))

	// idempotent
	require.NoError(t, util.MakeDirectory(dir))
}

func TestCleanAndExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, "data"), util.CleanAndExpandPath("~/data"))
	require.Equal(t, "", util.CleanAndExpandPath(""))

	t.Setenv("BATCHD_TEST_DIR", "/tmp/batchd")
	require.Equal(t, "/tmp/batchd/logs", util.CleanAndExpandPath("$BATCHD_TEST_DIR/logs"))
}
