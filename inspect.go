package sga

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/opencontainers/go-digest"

	sgacore "github.com/meigma/sga/core"
)

// InspectResult describes an opened archive.
type InspectResult struct {
	// Path is the archive file path.
	Path string `json:"path"`

	// Version is the archive's format version.
	Version string `json:"version"`

	// Digest is the sha256 digest of the archive file.
	Digest digest.Digest `json:"digest"`

	// Size is the archive file size in bytes.
	Size int64 `json:"size"`

	// FileCount is the number of regular files in the filesystem.
	FileCount int `json:"file_count"`

	// TotalSize is the sum of the sizes of all regular files.
	TotalSize uint64 `json:"total_size"`

	// Entries lists every regular file in walk order.
	Entries []InspectEntry `json:"entries"`
}

// InspectEntry describes a single file.
type InspectEntry struct {
	Path    string      `json:"path"`
	Size    int64       `json:"size"`
	Mode    fs.FileMode `json:"mode"`
	ModTime time.Time   `json:"mod_time,omitzero"`
}

// Inspect reports on the archive at path and on fsys, the filesystem a plugin
// opened from it. The archive file is read once to compute its digest.
func Inspect(path string, fsys fs.FS) (*InspectResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sga: inspect: %w", err)
	}
	defer f.Close()

	version, err := sgacore.ReadVersion(f, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dgst, err := digest.SHA256.FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("sga: digest %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("sga: stat %s: %w", path, err)
	}

	res := &InspectResult{
		Path:    path,
		Version: version.String(),
		Digest:  dgst,
		Size:    info.Size(),
		Entries: []InspectEntry{},
	}
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		res.Entries = append(res.Entries, InspectEntry{
			Path:    p,
			Size:    fi.Size(),
			Mode:    fi.Mode(),
			ModTime: fi.ModTime(),
		})
		res.FileCount++
		res.TotalSize += uint64(fi.Size()) //nolint:gosec // file sizes are non-negative
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sga: walk %s: %w", path, err)
	}
	return res, nil
}

// WriteJSON encodes the result. Minified output has no indentation.
func (r *InspectResult) WriteJSON(w io.Writer, minify bool) error {
	enc := json.NewEncoder(w)
	if !minify {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}
