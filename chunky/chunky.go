package chunky

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/meigma/sga/plugin"
)

// PluginGroup is the declaration group under which extractors announce themselves.
const PluginGroup = "sga.chunky.extractor"

// Well-known extractor names.
const (
	KindAudio           = "fda"
	KindModel           = "whm"
	KindTeamTexture     = "wtp"
	KindDefaultTexture  = "rtx"
	KindCampaignTexture = "rsh"
)

// ErrInvalidInput is returned when the source is not an existing regular file.
var ErrInvalidInput = errors.New("chunky: invalid input")

// Args are the parsed arguments of an extraction.
type Args struct {
	// Src is the Chunky file to extract. Run guarantees it is an existing
	// regular file before invoking an extractor.
	Src string

	// Dst is the output file or directory.
	Dst string

	// Options holds extractor-specific settings.
	Options map[string]string
}

// Extractor converts one kind of Chunky file.
type Extractor interface {
	// Name returns the kind the extractor handles, e.g. "rsh".
	Name() string

	// Help returns a one-line description for command listings.
	Help() string

	// Run performs the extraction. Args.Src has already been validated.
	Run(ctx context.Context, args Args) error
}

// Registry maps extractor names to extractors.
type Registry struct {
	extractors *plugin.Registry[string, Extractor]
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for dispatch events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty extractor registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	r.extractors = plugin.New(strings.ToLower, extractorNames, plugin.WithLogger(r.logger))
	return r
}

func extractorNames(e Extractor) []string {
	return []string{e.Name()}
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Register adds e under its name, replacing any previous extractor.
func (r *Registry) Register(e Extractor) {
	r.extractors.Register(e)
}

// Load registers the extractors src provides for PluginGroup.
func (r *Registry) Load(src plugin.Source[Extractor]) (int, error) {
	return r.extractors.Load(src, PluginGroup)
}

// Names returns the registered extractor names, sorted.
func (r *Registry) Names() []string {
	return r.extractors.Keys()
}

// Extractors returns the registered extractors, sorted by name.
func (r *Registry) Extractors() []Extractor {
	entries := r.extractors.Entries()
	out := make([]Extractor, len(entries))
	for i, e := range entries {
		out[i] = e.Plugin
	}
	return out
}

// Lookup returns the extractor registered under name.
func (r *Registry) Lookup(name string) (Extractor, error) {
	return r.extractors.Lookup(name)
}

// Run validates args.Src and invokes the extractor registered under name.
// Errors from the extractor are returned unchanged.
func (r *Registry) Run(ctx context.Context, name string, args Args) error {
	e, err := r.Lookup(name)
	if err != nil {
		return err
	}
	info, err := os.Stat(args.Src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidInput, args.Src)
	}
	r.log().Debug("running extractor", "kind", e.Name(), "src", args.Src, "dst", args.Dst)
	return e.Run(ctx, args)
}

// Declare announces e to registries loading from plugin.Declared.
// Call it from an extractor package's init function.
func Declare(e Extractor) {
	plugin.Declare(PluginGroup, e)
}
