// Package cli implements the sga command-line tool.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/sga"
	"github.com/meigma/sga/chunky"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// errUsage marks errors caused by bad command-line input.
var errUsage = errors.New("usage")

// App runs sga commands against an opener and an extractor registry.
type App struct {
	Opener     *sga.Opener
	Extractors *chunky.Registry
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
}

type command struct {
	name  string
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"version", "version FILE", "Print the SGA version of an archive.", (*App).runVersion},
	{"list", "list", "List the registered archive plugins.", (*App).runList},
	{"tree", "tree [-pattern GLOB] FILE", "Print the file tree of an archive.", (*App).runTree},
	{"info", "info [-minify] FILE [OUT]", "Write archive metadata as JSON.", (*App).runInfo},
	{"unpack", "unpack [-merge|-isolate] [-overwrite] [-workers N] FILE DIR", "Extract an archive to a directory.", (*App).runUnpack},
	{"extract", "extract KIND SRC DST", "Extract a Chunky media file.", (*App).runExtract},
}

func (a *App) log() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// Run executes the command named by args[0] and returns an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		a.usage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(a, ctx, args[1:])
		switch {
		case err == nil:
			return ExitOK
		case errors.Is(err, flag.ErrHelp):
			return ExitOK
		case errors.Is(err, errUsage):
			fmt.Fprintf(a.Stderr, "%v\nusage: sga %s\n", err, c.usage)
			return ExitUsage
		default:
			a.log().Error("command failed", "command", c.name, "error", err)
			fmt.Fprintf(a.Stderr, "sga %s: %v\n", c.name, err)
			return ExitError
		}
	}
	fmt.Fprintf(a.Stderr, "unknown command %q\n", args[0])
	a.usage()
	return ExitUsage
}

func (a *App) usage() {
	fmt.Fprintln(a.Stderr, "usage: sga COMMAND [ARGS]")
	fmt.Fprintln(a.Stderr)
	fmt.Fprintln(a.Stderr, "commands:")
	for _, c := range commands {
		fmt.Fprintf(a.Stderr, "  %-10s %s\n", c.name, c.help)
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// parseArgs parses flags that may appear before, between, or after
// positional arguments and checks the positional count.
func parseArgs(fs *flag.FlagSet, args []string, minPos, maxPos int) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", errUsage, err)
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(positional) < minPos || len(positional) > maxPos {
		return nil, fmt.Errorf("%w: expected %d to %d arguments, got %d", errUsage, minPos, maxPos, len(positional))
	}
	return positional, nil
}

func (a *App) runVersion(_ context.Context, args []string) error {
	pos, err := parseArgs(a.newFlagSet("version"), args, 1, 1)
	if err != nil {
		return err
	}
	f, err := os.Open(pos[0])
	if err != nil {
		return err
	}
	defer f.Close()

	v, err := sga.ReadVersion(f, true)
	if errors.Is(err, sga.ErrFormat) {
		fmt.Fprintf(a.Stdout, "File is not an SGA: %s\n", pos[0])
		a.log().Debug("version probe failed", "path", pos[0], "error", err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "%s: %s\n", pos[0], v)
	return nil
}

func (a *App) runList(_ context.Context, args []string) error {
	if _, err := parseArgs(a.newFlagSet("list"), args, 0, 0); err != nil {
		return err
	}
	entries := a.Opener.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.Stdout, "No Plugins Found")
		return nil
	}
	fmt.Fprintln(a.Stdout, "Archive plugins:")
	for _, e := range entries {
		fmt.Fprintf(a.Stdout, "  %-8s %s [%s]\n", e.Key, e.Plugin, strings.Join(e.Plugin.Protocols(), ", "))
	}
	if a.Extractors != nil {
		if exts := a.Extractors.Extractors(); len(exts) > 0 {
			fmt.Fprintln(a.Stdout, "Chunky extractors:")
			for _, e := range exts {
				fmt.Fprintf(a.Stdout, "  %-8s %s\n", e.Name(), e.Help())
			}
		}
	}
	return nil
}

func (a *App) runTree(_ context.Context, args []string) error {
	fset := a.newFlagSet("tree")
	pattern := fset.String("pattern", "", "only show files matching the doublestar `GLOB`")
	pos, err := parseArgs(fset, args, 1, 1)
	if err != nil {
		return err
	}
	fsys, err := a.Opener.OpenFile(pos[0])
	if err != nil {
		return err
	}
	return printTree(a.Stdout, filepath.Base(pos[0]), fsys, *pattern)
}

func (a *App) runInfo(_ context.Context, args []string) error {
	fset := a.newFlagSet("info")
	minify := fset.Bool("minify", false, "write compact JSON")
	fset.BoolVar(minify, "m", false, "shorthand for -minify")
	pos, err := parseArgs(fset, args, 1, 2)
	if err != nil {
		return err
	}
	fsys, err := a.Opener.OpenFile(pos[0])
	if err != nil {
		return err
	}
	res, err := sga.Inspect(pos[0], fsys)
	if err != nil {
		return err
	}
	if len(pos) == 1 {
		return res.WriteJSON(a.Stdout, *minify)
	}

	out := pos[1]
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		base := strings.TrimSuffix(filepath.Base(pos[0]), filepath.Ext(pos[0]))
		out = filepath.Join(out, base+".json")
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := res.WriteJSON(f, *minify); err != nil {
		_ = f.Close() //nolint:errcheck // the encode error is more useful
		return err
	}
	a.log().Info("wrote archive info", "path", out)
	return f.Close()
}

func (a *App) runUnpack(ctx context.Context, args []string) error {
	fset := a.newFlagSet("unpack")
	merge := fset.Bool("merge", false, "write every drive into DIR directly")
	fset.BoolVar(merge, "m", false, "shorthand for -merge")
	isolate := fset.Bool("isolate", false, "write each drive into its own subdirectory (default)")
	fset.BoolVar(isolate, "i", false, "shorthand for -isolate")
	overwrite := fset.Bool("overwrite", false, "replace existing files")
	workers := fset.Int("workers", 0, "concurrent writers (0 = GOMAXPROCS)")
	pos, err := parseArgs(fset, args, 2, 2)
	if err != nil {
		return err
	}
	if *merge && *isolate {
		return fmt.Errorf("%w: -merge and -isolate are mutually exclusive", errUsage)
	}

	fsys, err := a.Opener.OpenFile(pos[0])
	if err != nil {
		return err
	}
	stats, err := sga.Unpack(ctx, fsys, pos[1],
		sga.UnpackWithMerge(*merge),
		sga.UnpackWithOverwrite(*overwrite),
		sga.UnpackWithWorkers(*workers),
		sga.UnpackWithLogger(a.log()),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "unpacked %d files (%d bytes), skipped %d\n", stats.FileCount, stats.TotalBytes, stats.Skipped)
	return nil
}

func (a *App) runExtract(ctx context.Context, args []string) error {
	pos, err := parseArgs(a.newFlagSet("extract"), args, 3, 3)
	if err != nil {
		return err
	}
	if a.Extractors == nil {
		return errors.New("no chunky extractors available")
	}
	return a.Extractors.Run(ctx, pos[0], chunky.Args{Src: pos[1], Dst: pos[2]})
}
