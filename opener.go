package sga

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	sgacore "github.com/meigma/sga/core"
	"github.com/meigma/sga/plugin"
)

// DefaultProtocol is the URL scheme served by an opener unless configured otherwise.
const DefaultProtocol = "sga"

// Opener opens archives by probing their version and dispatching to the
// plugin registered for it.
//
// The version is the only dispatch key: several plugins may serve the same
// protocol for different versions. Registering a plugin for a version that
// already has one replaces it.
type Opener struct {
	plugins   *plugin.Registry[Version, Plugin]
	protocols []string
	source    plugin.Source[Plugin]
	group     string
	autoload  bool
	seed      []Plugin
	openFile  func(name string) (io.ReadSeekCloser, error)
	logger    *slog.Logger
}

// NewOpener creates an opener.
//
// Unless disabled with WithAutoload(false), plugins declared for
// [PluginGroup] are loaded once during construction. Plugins supplied with
// WithPlugins are registered afterwards and take precedence.
func NewOpener(opts ...Option) (*Opener, error) {
	o := &Opener{
		protocols: []string{DefaultProtocol},
		source:    plugin.Declared[Plugin]{},
		group:     sgacore.PluginGroup,
		autoload:  true,
		openFile:  openOSFile,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.plugins = plugin.New(versionKey, pluginVersions, plugin.WithLogger(o.logger))

	if o.autoload {
		if _, err := o.LoadPlugins(); err != nil {
			return nil, err
		}
	}
	for _, p := range o.seed {
		o.plugins.Register(p)
	}
	return o, nil
}

func versionKey(v Version) string {
	return v.String()
}

func pluginVersions(p Plugin) []Version {
	return p.Versions()
}

func openOSFile(name string) (io.ReadSeekCloser, error) {
	return os.Open(name)
}

// log returns the logger, falling back to a discard logger if nil.
func (o *Opener) log() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.logger
}

// LoadPlugins registers every plugin the configured source provides and
// returns how many were loaded.
func (o *Opener) LoadPlugins() (int, error) {
	n, err := o.plugins.Load(o.source, o.group)
	if err != nil {
		return 0, err
	}
	o.log().Debug("opener plugins loaded", "group", o.group, "count", n)
	return n, nil
}

// Protocols returns the URL schemes accepted by Open.
func (o *Opener) Protocols() []string {
	return slices.Clone(o.protocols)
}

// Register adds p for every version it claims.
func (o *Opener) Register(p Plugin) {
	o.plugins.Register(p)
}

// Unregister removes the plugin for v and reports whether one existed.
func (o *Opener) Unregister(v Version) bool {
	return o.plugins.Unregister(v)
}

// Clear removes every registered plugin.
func (o *Opener) Clear() {
	o.plugins.Clear()
}

// Entries returns the registered plugins, sorted by version key.
func (o *Opener) Entries() []PluginEntry {
	return o.plugins.Entries()
}

// Versions returns the versions that have a plugin, in ascending order.
func (o *Opener) Versions() []Version {
	entries := o.plugins.Entries()
	versions := make([]Version, len(entries))
	for i, e := range entries {
		versions[i] = e.Entity
	}
	slices.SortFunc(versions, Version.Compare)
	return versions
}

// Lookup returns the plugin registered for v.
// It returns an *UnsupportedVersionError if there is none.
func (o *Opener) Lookup(v Version) (Plugin, error) {
	p, err := o.plugins.Lookup(v)
	if errors.Is(err, plugin.ErrNotRegistered) {
		return nil, &UnsupportedVersionError{Version: v, Known: o.Versions()}
	}
	return p, err
}

// OpenFS opens the archive named by parsed.Resource.
//
// The resource is expanded and resolved against cwd, its header is probed,
// and the plugin registered for the detected version is asked to open it.
// The plugin receives fsURL, parsed, writeable, create, and cwd exactly as
// given and is responsible for honoring writeable and create.
//
// An empty resource fails with ErrConfiguration before any I/O: creating an
// archive needs a version-specific plugin, so the opener never creates one.
func (o *Opener) OpenFS(fsURL string, parsed ParseResult, writeable, create bool, cwd string) (fs.FS, error) {
	if parsed.Resource == "" {
		if create {
			return nil, fmt.Errorf("%w: cannot create an archive through the opener; "+
				"create an empty filesystem with a version-specific plugin instead", ErrConfiguration)
		}
		return nil, fmt.Errorf("%w: no path was given and create was not requested", ErrConfiguration)
	}

	path, err := sgacore.ResolvePath(parsed.Resource, cwd)
	if err != nil {
		return nil, err
	}

	version, err := o.probe(path)
	if err != nil {
		return nil, err
	}

	p, err := o.Lookup(version)
	if err != nil {
		return nil, err
	}
	o.log().Debug("opening archive", "path", path, "version", version.String(), "plugin", p.String())
	return p.OpenFS(fsURL, parsed, writeable, create, cwd)
}

// probe reads the version of the archive at path. The file is closed before
// probe returns.
func (o *Opener) probe(path string) (v Version, err error) {
	f, err := o.openFile(path)
	if err != nil {
		return Version{}, fmt.Errorf("sga: open archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			v, err = Version{}, fmt.Errorf("sga: close %s: %w", path, cerr)
		}
	}()

	// The handle is discarded after the probe, so there is no cursor to restore.
	v, err = sgacore.ReadVersion(f, true)
	if err != nil {
		return Version{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Open parses fsURL and opens the archive it names.
//
// The URL's protocol must be one of the opener's protocols. By default the
// archive is opened read-only and relative resources resolve against the
// process working directory.
func (o *Opener) Open(fsURL string, opts ...OpenOption) (fs.FS, error) {
	parsed, err := sgacore.ParseURL(fsURL)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(o.protocols, parsed.Protocol) {
		return nil, fmt.Errorf("%w: protocol %q is not served by this opener (want one of %v)",
			ErrConfiguration, parsed.Protocol, o.protocols)
	}

	cfg := openConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cwd == "" {
		if cfg.cwd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("sga: working directory: %w", err)
		}
	}
	return o.OpenFS(fsURL, parsed, cfg.writeable, cfg.create, cfg.cwd)
}

// OpenFile opens an existing archive read-only.
// Relative paths resolve against the process working directory.
func (o *Opener) OpenFile(path string) (fs.FS, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("sga: working directory: %w", err)
	}
	protocol := DefaultProtocol
	if len(o.protocols) > 0 {
		protocol = o.protocols[0]
	}
	parsed := ParseResult{Protocol: protocol, Resource: path}
	return o.OpenFS(protocol+"://"+path, parsed, false, false, cwd)
}
