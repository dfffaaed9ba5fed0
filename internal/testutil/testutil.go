// Package testutil provides archive fixtures and fake plugins for tests.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	sgacore "github.com/meigma/sga/core"
)

// Header returns the encoded magic word and version record for v.
func Header(tb testing.TB, v sgacore.Version) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := sgacore.WriteVersion(&buf, v); err != nil {
		tb.Fatalf("write header: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// OpenCall records the arguments of a Plugin.OpenFS call.
type OpenCall struct {
	URL       string
	Parsed    sgacore.ParseResult
	Writeable bool
	Create    bool
	Cwd       string
}

// FakePlugin is a Plugin that records calls and returns a fixed result.
type FakePlugin struct {
	Name     string
	Protos   []string
	Claims   []sgacore.Version
	FS       fs.FS
	Err      error
	mu       sync.Mutex
	calls    []OpenCall
	resolved []string
}

// NewFakePlugin returns a plugin claiming versions that opens to an empty
// in-memory filesystem.
func NewFakePlugin(name string, versions ...sgacore.Version) *FakePlugin {
	return &FakePlugin{
		Name:   name,
		Protos: []string{"sga"},
		Claims: versions,
		FS:     fstest.MapFS{},
	}
}

// Protocols implements sgacore.Plugin.
func (p *FakePlugin) Protocols() []string { return p.Protos }

// Versions implements sgacore.Plugin.
func (p *FakePlugin) Versions() []sgacore.Version { return p.Claims }

// String implements sgacore.Plugin.
func (p *FakePlugin) String() string { return p.Name }

// OpenFS implements sgacore.Plugin.
func (p *FakePlugin) OpenFS(fsURL string, parsed sgacore.ParseResult, writeable, create bool, cwd string) (fs.FS, error) {
	resolved, err := sgacore.ResolvePath(parsed.Resource, cwd)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, OpenCall{URL: fsURL, Parsed: parsed, Writeable: writeable, Create: create, Cwd: cwd})
	p.resolved = append(p.resolved, resolved)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.FS, nil
}

// Calls returns the recorded OpenFS calls.
func (p *FakePlugin) Calls() []OpenCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OpenCall(nil), p.calls...)
}

// Resolved returns the absolute archive path of each recorded call.
func (p *FakePlugin) Resolved() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.resolved...)
}

// FileTracker opens files and remembers whether each was closed.
type FileTracker struct {
	mu    sync.Mutex
	files []*trackedFile
}

type trackedFile struct {
	io.ReadSeekCloser
	name   string
	closed bool
	owner  *FileTracker
}

func (f *trackedFile) Close() error {
	f.owner.mu.Lock()
	f.closed = true
	f.owner.mu.Unlock()
	return f.ReadSeekCloser.Close()
}

// Open opens name with os.Open and tracks the handle.
func (t *FileTracker) Open(name string) (io.ReadSeekCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	tf := &trackedFile{ReadSeekCloser: f, name: name, owner: t}
	t.mu.Lock()
	t.files = append(t.files, tf)
	t.mu.Unlock()
	return tf, nil
}

// Opened returns how many files were opened.
func (t *FileTracker) Opened() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}

// Leaked returns an error naming the first file that was not closed.
func (t *FileTracker) Leaked() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range t.files {
		if !f.closed {
			return fmt.Errorf("file %s was not closed", f.name)
		}
	}
	return nil
}
