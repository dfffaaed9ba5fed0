// Package sink writes unpacked archive files to a destination directory.
package sink

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Entry describes a file to be written.
type Entry struct {
	// Path is the slash-separated destination path relative to the sink root.
	Path string

	// Mode is the file's permission bits.
	Mode fs.FileMode

	// ModTime is the file's modification time.
	ModTime time.Time
}

// Committer receives file content and publishes it on Commit.
type Committer interface {
	Write(p []byte) (int, error)
	Commit() error
	Discard() error
}

// FileSink writes entries below a destination directory.
//
// Files are written to a temporary file in the same directory and renamed to
// the final path on Commit, so partially written files are never visible at
// the final path. All access goes through an os.Root, which rejects paths
// that escape the destination.
type FileSink struct {
	destDir       string
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
}

// Option configures a FileSink.
type Option func(*FileSink)

// WithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func WithOverwrite(overwrite bool) Option {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// WithPreserveMode applies the entry's permission bits.
func WithPreserveMode(preserve bool) Option {
	return func(s *FileSink) {
		s.preserveMode = preserve
	}
}

// WithPreserveTimes applies the entry's modification time.
func WithPreserveTimes(preserve bool) Option {
	return func(s *FileSink) {
		s.preserveTimes = preserve
	}
}

// New creates a FileSink that writes to destDir.
func New(destDir string, opts ...Option) *FileSink {
	s := &FileSink{destDir: destDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShouldProcess returns false if the file already exists and overwrite is disabled.
func (s *FileSink) ShouldProcess(entry *Entry) bool {
	if s.overwrite {
		return true
	}
	if !fs.ValidPath(entry.Path) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.destDir, filepath.FromSlash(entry.Path)))
	return errors.Is(err, fs.ErrNotExist)
}

// Writer returns a Committer for entry.
func (s *FileSink) Writer(entry *Entry) (Committer, error) {
	if !fs.ValidPath(entry.Path) || entry.Path == "." {
		return nil, &fs.PathError{Op: "unpack", Path: entry.Path, Err: fs.ErrInvalid}
	}
	destRel := filepath.FromSlash(entry.Path)
	destPath := filepath.Join(s.destDir, destRel)

	root, err := os.OpenRoot(s.destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", s.destDir, err)
	}
	if err := root.MkdirAll(filepath.Dir(destRel), 0o750); err != nil {
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("create directory %s: %w", filepath.Dir(destPath), err)
	}

	tempFile, tempRel, err := createTempFile(root, filepath.Dir(destRel), ".sga-")
	if err != nil {
		_ = root.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &fileCommitter{
		entry:    entry,
		destPath: destPath,
		destRel:  destRel,
		tempFile: tempFile,
		tempRel:  tempRel,
		root:     root,
		sink:     s,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	entry    *Entry
	destPath string
	destRel  string
	tempFile *os.File
	tempRel  string
	root     *os.Root
	sink     *FileSink
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file, applies metadata, and renames to final path.
func (c *fileCommitter) Commit() error {
	if err := c.tempFile.Close(); err != nil {
		return c.fail(fmt.Errorf("close temp file: %w", err))
	}
	if c.sink.preserveMode && c.entry.Mode != 0 {
		if err := c.root.Chmod(c.tempRel, c.entry.Mode.Perm()); err != nil {
			return c.fail(fmt.Errorf("chmod: %w", err))
		}
	}
	if c.sink.preserveTimes && !c.entry.ModTime.IsZero() {
		if err := c.root.Chtimes(c.tempRel, c.entry.ModTime, c.entry.ModTime); err != nil {
			return c.fail(fmt.Errorf("chtimes: %w", err))
		}
	}
	if err := c.root.Rename(c.tempRel, c.destRel); err != nil {
		return c.fail(fmt.Errorf("rename to %s: %w", c.destPath, err))
	}
	_ = c.root.Close() //nolint:errcheck // best-effort cleanup
	return nil
}

func (c *fileCommitter) fail(err error) error {
	_ = c.root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
	_ = c.root.Close()           //nolint:errcheck // best-effort cleanup
	return err
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	_ = c.tempFile.Close() //nolint:errcheck // we're cleaning up
	if err := c.root.Remove(c.tempRel); err != nil {
		_ = c.root.Close() //nolint:errcheck // best-effort cleanup
		return err
	}
	return c.root.Close()
}

func createTempFile(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
