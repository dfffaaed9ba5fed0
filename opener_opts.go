package sga

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/meigma/sga/plugin"
)

// Option configures an Opener.
type Option func(*Opener) error

// WithAutoload controls whether NewOpener loads plugins from the source.
// Enabled by default; tests usually disable it and use WithPlugins.
func WithAutoload(enabled bool) Option {
	return func(o *Opener) error {
		o.autoload = enabled
		return nil
	}
}

// WithSource sets where autoloaded plugins come from.
// The default source returns plugins announced with DeclarePlugin.
func WithSource(src plugin.Source[Plugin]) Option {
	return func(o *Opener) error {
		if src == nil {
			return errors.New("sga: nil plugin source")
		}
		o.source = src
		return nil
	}
}

// WithGroup sets the declaration group the source is queried for.
// The default is PluginGroup.
func WithGroup(group string) Option {
	return func(o *Opener) error {
		if group == "" {
			return errors.New("sga: empty plugin group")
		}
		o.group = group
		return nil
	}
}

// WithPlugins registers a fixed plugin set after autoloading.
func WithPlugins(plugins ...Plugin) Option {
	return func(o *Opener) error {
		for _, p := range plugins {
			if p == nil {
				return errors.New("sga: nil plugin")
			}
		}
		o.seed = append(o.seed, plugins...)
		return nil
	}
}

// WithProtocols sets the URL schemes accepted by Open.
// The default is DefaultProtocol.
func WithProtocols(protocols ...string) Option {
	return func(o *Opener) error {
		if len(protocols) == 0 {
			return errors.New("sga: at least one protocol is required")
		}
		o.protocols = make([]string, len(protocols))
		for i, p := range protocols {
			if p == "" || strings.Contains(p, "://") {
				return fmt.Errorf("sga: invalid protocol %q", p)
			}
			o.protocols[i] = strings.ToLower(p)
		}
		return nil
	}
}

// WithOpenFunc replaces the function used to open archives for probing.
// The default is os.Open.
func WithOpenFunc(fn func(name string) (io.ReadSeekCloser, error)) Option {
	return func(o *Opener) error {
		if fn == nil {
			return errors.New("sga: nil open function")
		}
		o.openFile = fn
		return nil
	}
}

// WithLogger sets the logger for registration and dispatch events.
// By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) error {
		o.logger = logger
		return nil
	}
}

// OpenOption configures a single Open call.
type OpenOption func(*openConfig)

type openConfig struct {
	writeable bool
	create    bool
	cwd       string
}

// OpenWithWriteable requests a writeable filesystem.
// Whether writing is possible is up to the plugin.
func OpenWithWriteable(writeable bool) OpenOption {
	return func(c *openConfig) {
		c.writeable = writeable
	}
}

// OpenWithCreate asks for the archive to be created if it is missing.
// The opener itself never creates archives; see Opener.OpenFS.
func OpenWithCreate(create bool) OpenOption {
	return func(c *openConfig) {
		c.create = create
	}
}

// OpenWithCwd sets the directory relative resources resolve against.
func OpenWithCwd(cwd string) OpenOption {
	return func(c *openConfig) {
		c.cwd = cwd
	}
}
