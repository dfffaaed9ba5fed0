package testutil

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"testing"
	"testing/fstest"
	"time"

	"github.com/klauspost/compress/zstd"

	sgacore "github.com/meigma/sga/core"
)

// fixtureModTime is stamped on every fixture entry so archives are reproducible.
var fixtureModTime = time.Date(2004, 9, 20, 0, 0, 0, 0, time.UTC)

// EncodeArchive returns a fixture archive: the header for v followed by a
// zstd-compressed tar of files. Real SGA layouts are plugin territory; the
// fixture only needs to round-trip through ArchivePlugin.
func EncodeArchive(tb testing.TB, v sgacore.Version, files map[string][]byte) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := sgacore.WriteVersion(&buf, v); err != nil {
		tb.Fatalf("write header: %v", err)
	}

	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		tb.Fatalf("zstd writer: %v", err)
	}
	tw := tar.NewWriter(enc)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		data := files[name]
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			ModTime:  fixtureModTime,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			tb.Fatalf("tar header %s: %v", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			tb.Fatalf("tar write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		tb.Fatalf("tar close: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("zstd close: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes a fixture archive to name inside dir and returns its path.
func WriteArchive(tb testing.TB, dir, name string, v sgacore.Version, files map[string][]byte) string {
	tb.Helper()
	return WriteFile(tb, dir, name, EncodeArchive(tb, v, files))
}

// ArchivePlugin opens fixture archives written by EncodeArchive into an
// in-memory filesystem.
type ArchivePlugin struct {
	Claims []sgacore.Version
}

// Protocols implements sgacore.Plugin.
func (p ArchivePlugin) Protocols() []string { return []string{"sga"} }

// Versions implements sgacore.Plugin.
func (p ArchivePlugin) Versions() []sgacore.Version { return p.Claims }

// String implements sgacore.Plugin.
func (p ArchivePlugin) String() string {
	return fmt.Sprintf("fixture archive plugin %v", p.Claims)
}

// OpenFS implements sgacore.Plugin. The fixture format is read-only.
func (p ArchivePlugin) OpenFS(_ string, parsed sgacore.ParseResult, writeable, create bool, cwd string) (fs.FS, error) {
	if writeable || create {
		return nil, errors.New("fixture archives are read-only")
	}
	path, err := sgacore.ResolvePath(parsed.Resource, cwd)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	v, err := sgacore.ReadVersion(f, true)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(p.Claims, v) {
		return nil, fmt.Errorf("fixture plugin does not handle %s", v)
	}
	return decodeBody(f)
}

func decodeBody(r io.Reader) (fstest.MapFS, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	out := fstest.MapFS{}
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read entry: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", hdr.Name, err)
		}
		out[hdr.Name] = &fstest.MapFile{
			Data:    data,
			Mode:    fs.FileMode(hdr.Mode).Perm(),
			ModTime: hdr.ModTime,
		}
	}
}
