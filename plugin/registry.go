package plugin

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Entry is a single key to plugin association in a registry snapshot.
type Entry[E, P any] struct {
	// Key is the derived lookup key.
	Key string

	// Entity is the entity the key was derived from.
	Entity E

	// Plugin is the plugin registered under Key.
	Plugin P
}

// Registry maps keys derived from entities of type E to plugins of type P.
//
// Registering a key that is already present replaces the previous plugin;
// the most recently registered plugin wins. Methods are safe for concurrent
// use, but population is expected to finish before lookups begin.
type Registry[E, P any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[E, P]
	keyOf   func(E) string
	claims  func(P) []E
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for registration events.
// By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an empty registry.
//
// keyOf derives the lookup key of an entity; claims lists the entities a
// plugin supports and is consulted by Register.
func New[E, P any](keyOf func(E) string, claims func(P) []E, opts ...Option) *Registry[E, P] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[E, P]{
		entries: make(map[string]Entry[E, P]),
		keyOf:   keyOf,
		claims:  claims,
		logger:  o.logger,
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Registry[E, P]) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Register adds p under the key of every entity it claims.
func (r *Registry[E, P]) Register(p P) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.claims(p) {
		r.setLocked(e, p)
	}
}

// Set registers p under the key of e only.
func (r *Registry[E, P]) Set(e E, p P) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(e, p)
}

func (r *Registry[E, P]) setLocked(e E, p P) {
	key := r.keyOf(e)
	if prev, ok := r.entries[key]; ok {
		r.log().Debug("plugin replaced", "key", key,
			"previous", fmt.Sprint(prev.Plugin), "plugin", fmt.Sprint(p))
	} else {
		r.log().Debug("plugin registered", "key", key, "plugin", fmt.Sprint(p))
	}
	r.entries[key] = Entry[E, P]{Key: key, Entity: e, Plugin: p}
}

// Unregister removes the entry for e and reports whether one existed.
func (r *Registry[E, P]) Unregister(e E) bool {
	key := r.keyOf(e)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	r.log().Debug("plugin unregistered", "key", key)
	return true
}

// Clear removes every entry. The registry is not repopulated afterwards.
func (r *Registry[E, P]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}

// Lookup returns the plugin registered for the key of e.
// It returns a *NotRegisteredError if there is none.
func (r *Registry[E, P]) Lookup(e E) (P, error) {
	key := r.keyOf(e)
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	if !ok {
		var zero P
		return zero, &NotRegisteredError{Key: key, Known: slices.Sorted(maps.Keys(r.entries))}
	}
	return entry.Plugin, nil
}

// Len returns the number of registered keys.
func (r *Registry[E, P]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns the registered keys, sorted.
func (r *Registry[E, P]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Entries returns a snapshot of the registry, sorted by key.
func (r *Registry[E, P]) Entries() []Entry[E, P] {
	r.mu.RLock()
	entries := slices.Collect(maps.Values(r.entries))
	r.mu.RUnlock()
	slices.SortFunc(entries, func(a, b Entry[E, P]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return entries
}

// Load registers every plugin src provides for group and returns how many
// plugins were registered. Nothing is registered if src fails.
func (r *Registry[E, P]) Load(src Source[P], group string) (int, error) {
	plugins, err := src.Plugins(group)
	if err != nil {
		return 0, fmt.Errorf("plugin: load group %q: %w", group, err)
	}
	for _, p := range plugins {
		r.Register(p)
	}
	r.log().Debug("plugins loaded", "group", group, "count", len(plugins))
	return len(plugins), nil
}
