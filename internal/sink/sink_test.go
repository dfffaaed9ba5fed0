package sink

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, s *FileSink, e *Entry, content string) {
	t.Helper()
	w, err := s.Writer(e)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Commit())
}

func TestFileSink_WritesNestedFile(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	s := New(dest)
	write(t, s, &Entry{Path: "data/art/ui.rsh"}, "texture")

	got, err := os.ReadFile(filepath.Join(dest, "data", "art", "ui.rsh"))
	require.NoError(t, err)
	assert.Equal(t, "texture", string(got))

	leftovers, err := filepath.Glob(filepath.Join(dest, "data", "art", ".sga-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileSink_ShouldProcess(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("old"), 0o600))

	e := &Entry{Path: "a.txt"}
	assert.False(t, New(dest).ShouldProcess(e))
	assert.True(t, New(dest).ShouldProcess(&Entry{Path: "b.txt"}))
	assert.True(t, New(dest, WithOverwrite(true)).ShouldProcess(e))
	assert.False(t, New(dest).ShouldProcess(&Entry{Path: "../x"}))
}

func TestFileSink_RejectsTraversal(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	for _, p := range []string{"../pwned.txt", "/abs.txt", "a/../../b", "."} {
		_, err := New(dest).Writer(&Entry{Path: p})
		var pathErr *fs.PathError
		require.ErrorAs(t, err, &pathErr, p)
		require.ErrorIs(t, pathErr.Err, fs.ErrInvalid)
	}
}

func TestFileSink_PreserveMetadata(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	mtime := time.Date(2004, 9, 20, 12, 0, 0, 0, time.UTC)
	s := New(dest, WithPreserveMode(true), WithPreserveTimes(true))
	write(t, s, &Entry{Path: "f.bin", Mode: 0o640, ModTime: mtime}, "x")

	info, err := os.Stat(filepath.Join(dest, "f.bin"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestFileSink_Discard(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	w, err := New(dest).Writer(&Entry{Path: "gone.txt"})
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Discard())

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
