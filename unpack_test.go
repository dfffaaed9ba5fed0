package sga

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drivesFS() fstest.MapFS {
	return fstest.MapFS{
		"data/art/ui.rsh":   {Data: []byte("texture"), Mode: 0o644},
		"data/sound/a.fda":  {Data: []byte("audio!"), Mode: 0o644},
		"attrib/unit.lua":   {Data: []byte("unit"), Mode: 0o644},
		"attrib/art/ui.rsh": {Data: []byte("shadow"), Mode: 0o644},
		"readme.txt":        {Data: []byte("hi"), Mode: 0o644},
	}
}

func readDest(t *testing.T, dest, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestUnpack_Isolate(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out")
	stats, err := Unpack(context.Background(), drivesFS(), dest)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.FileCount)
	assert.Equal(t, uint64(7+6+4+6+2), stats.TotalBytes)
	assert.Zero(t, stats.Skipped)
	assert.Equal(t, "texture", readDest(t, dest, "data/art/ui.rsh"))
	assert.Equal(t, "shadow", readDest(t, dest, "attrib/art/ui.rsh"))
	assert.Equal(t, "hi", readDest(t, dest, "readme.txt"))
}

func TestUnpack_Merge(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	stats, err := Unpack(context.Background(), drivesFS(), dest, UnpackWithMerge(true), UnpackWithWorkers(1))
	require.NoError(t, err)

	// WalkDir visits "attrib" before "data", so attrib's copy wins the collision.
	assert.Equal(t, 4, stats.FileCount)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, "shadow", readDest(t, dest, "art/ui.rsh"))
	assert.Equal(t, "audio!", readDest(t, dest, "sound/a.fda"))
	assert.Equal(t, "unit", readDest(t, dest, "unit.lua"))
	assert.Equal(t, "hi", readDest(t, dest, "readme.txt"))
}

func TestUnpack_SkipsExisting(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "readme.txt"), []byte("mine"), 0o600))

	stats, err := Unpack(context.Background(), drivesFS(), dest)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.FileCount)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, "mine", readDest(t, dest, "readme.txt"))

	stats, err = Unpack(context.Background(), drivesFS(), dest, UnpackWithOverwrite(true))
	require.NoError(t, err)
	assert.Equal(t, 5, stats.FileCount)
	assert.Equal(t, "hi", readDest(t, dest, "readme.txt"))
}

func TestUnpack_Root(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	stats, err := Unpack(context.Background(), drivesFS(), dest, UnpackWithRoot(`\data\art`))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, "texture", readDest(t, dest, "ui.rsh"))

	_, err = Unpack(context.Background(), drivesFS(), dest, UnpackWithRoot("../etc"))
	require.ErrorIs(t, err, fs.ErrInvalid)

	_, err = Unpack(context.Background(), drivesFS(), dest, UnpackWithRoot("nope"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestUnpack_PreserveMetadata(t *testing.T) {
	t.Parallel()

	mtime := time.Date(2006, 8, 8, 0, 0, 0, 0, time.UTC)
	fsys := fstest.MapFS{"a/b.txt": {Data: []byte("b"), Mode: 0o640, ModTime: mtime}}

	dest := t.TempDir()
	_, err := Unpack(context.Background(), fsys, dest,
		UnpackWithPreserveMode(true), UnpackWithPreserveTimes(true))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dest, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestUnpack_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := t.TempDir()
	stats, err := Unpack(ctx, drivesFS(), dest)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.FileCount)
}
