package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.hcl", "a.hcl", "sub/c.hcl", "notes.txt")

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "sub", "c.hcl"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "one.hcl", "dir/two.hcl", "dir/skip.json", "explicit.txt")

	files, err := ExpandPaths([]string{
		filepath.Join(root, "explicit.txt"),
		filepath.Join(root, "dir"),
		filepath.Join(root, "dir", "two.hcl"),
		filepath.Join(root, "one.hcl"),
	}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "explicit.txt"),
		filepath.Join(root, "dir", "two.hcl"),
		filepath.Join(root, "one.hcl"),
	}, files)

	_, err = ExpandPaths([]string{filepath.Join(root, "missing")}, ".hcl")
	assert.ErrorContains(t, err, "missing")
}

func TestGlobAndCopy(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "x_cal.hcl", "a_cal.hcl", "a_rate.hcl")

	matches, err := Glob(root, "*_cal.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a_cal.hcl"), filepath.Join(root, "x_cal.hcl")}, matches)

	dst := filepath.Join(root, "copies", "deep", "a.hcl")
	require.NoError(t, CopyFile(dst, filepath.Join(root, "a_cal.hcl")))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a_cal.hcl", string(data))
	assert.True(t, Exists(dst))
	assert.False(t, Exists(filepath.Join(root, "nope")))
}
