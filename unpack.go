package sga

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	sgacore "github.com/meigma/sga/core"
	"github.com/meigma/sga/internal/sink"
)

// UnpackOption configures Unpack.
type UnpackOption func(*unpackConfig)

type unpackConfig struct {
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
	merge         bool
	workers       int
	root          string
	logger        *slog.Logger
}

// UnpackWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func UnpackWithOverwrite(overwrite bool) UnpackOption {
	return func(c *unpackConfig) {
		c.overwrite = overwrite
	}
}

// UnpackWithPreserveMode preserves file permission modes from the archive.
func UnpackWithPreserveMode(preserve bool) UnpackOption {
	return func(c *unpackConfig) {
		c.preserveMode = preserve
	}
}

// UnpackWithPreserveTimes preserves file modification times from the archive.
func UnpackWithPreserveTimes(preserve bool) UnpackOption {
	return func(c *unpackConfig) {
		c.preserveTimes = preserve
	}
}

// UnpackWithMerge writes the contents of every top-level directory (an
// archive drive) straight into the destination instead of one subdirectory
// per drive. When drives collide, the first file in walk order wins.
func UnpackWithMerge(merge bool) UnpackOption {
	return func(c *unpackConfig) {
		c.merge = merge
	}
}

// UnpackWithWorkers sets the number of files written concurrently.
// Zero or less uses GOMAXPROCS.
func UnpackWithWorkers(n int) UnpackOption {
	return func(c *unpackConfig) {
		c.workers = n
	}
}

// UnpackWithRoot limits unpacking to the subtree at root.
// Backslashes are accepted as separators.
func UnpackWithRoot(root string) UnpackOption {
	return func(c *unpackConfig) {
		c.root = root
	}
}

// UnpackWithLogger sets the logger for per-file events.
func UnpackWithLogger(logger *slog.Logger) UnpackOption {
	return func(c *unpackConfig) {
		c.logger = logger
	}
}

// UnpackStats reports the outcome of Unpack.
type UnpackStats struct {
	// FileCount is the number of files written.
	FileCount int

	// TotalBytes is the number of bytes written.
	TotalBytes uint64

	// Skipped is the number of files not written because they already
	// existed or collided with another file during a merge.
	Skipped int
}

type unpackJob struct {
	src   string
	entry sink.Entry
}

// Unpack copies every regular file of fsys into destDir.
//
// Files are written atomically through temporary files. Paths that would
// escape destDir are rejected. The first error cancels outstanding work.
func Unpack(ctx context.Context, fsys fs.FS, destDir string, opts ...UnpackOption) (UnpackStats, error) {
	cfg := unpackConfig{root: "."}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	root := sgacore.NormalizePath(cfg.root)
	if !fs.ValidPath(root) {
		return UnpackStats{}, &fs.PathError{Op: "unpack", Path: cfg.root, Err: fs.ErrInvalid}
	}

	jobs, collisions, err := collectUnpackJobs(fsys, root, cfg.merge)
	if err != nil {
		return UnpackStats{}, err
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return UnpackStats{}, fmt.Errorf("sga: create destination: %w", err)
	}
	fileSink := sink.New(destDir,
		sink.WithOverwrite(cfg.overwrite),
		sink.WithPreserveMode(cfg.preserveMode),
		sink.WithPreserveTimes(cfg.preserveTimes),
	)

	var written, skipped atomic.Int64
	var totalBytes atomic.Uint64
	skipped.Add(int64(collisions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !fileSink.ShouldProcess(&job.entry) {
				skipped.Add(1)
				log.Debug("unpack skipped existing file", "path", job.entry.Path)
				return nil
			}
			n, err := unpackFile(fsys, fileSink, job)
			if err != nil {
				return err
			}
			written.Add(1)
			totalBytes.Add(uint64(n)) //nolint:gosec // io.Copy never returns a negative count
			log.Debug("unpacked file", "path", job.entry.Path, "bytes", n)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	stats := UnpackStats{
		FileCount:  int(written.Load()),
		TotalBytes: totalBytes.Load(),
		Skipped:    int(skipped.Load()),
	}
	return stats, err
}

func collectUnpackJobs(fsys fs.FS, root string, merge bool) ([]unpackJob, int, error) {
	var jobs []unpackJob
	seen := make(map[string]struct{})
	collisions := 0

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel := path
		if root != "." {
			rel = strings.TrimPrefix(path, root+"/")
			if path == root {
				rel = d.Name()
			}
		}
		if merge {
			if _, rest, ok := strings.Cut(rel, "/"); ok {
				rel = rest
			}
		}
		if _, dup := seen[rel]; dup {
			collisions++
			return nil
		}
		seen[rel] = struct{}{}

		info, err := d.Info()
		if err != nil {
			return err
		}
		jobs = append(jobs, unpackJob{
			src:   path,
			entry: sink.Entry{Path: rel, Mode: info.Mode(), ModTime: info.ModTime()},
		})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("sga: walk %s: %w", root, err)
	}
	return jobs, collisions, nil
}

func unpackFile(fsys fs.FS, fileSink *sink.FileSink, job unpackJob) (int64, error) {
	src, err := fsys.Open(job.src)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	w, err := fileSink.Writer(&job.entry)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Discard() //nolint:errcheck // the copy error is more useful
		return 0, fmt.Errorf("unpack %s: %w", job.src, err)
	}
	if err := w.Commit(); err != nil {
		return 0, fmt.Errorf("unpack %s: %w", job.src, err)
	}
	return n, nil
}
