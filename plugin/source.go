package plugin

import (
	"fmt"
	"sync"
)

// Source enumerates the plugins available for a declaration group.
type Source[P any] interface {
	Plugins(group string) ([]P, error)
}

// StaticSource is a fixed plugin list. It ignores the group.
type StaticSource[P any] []P

// Plugins returns a copy of the list.
func (s StaticSource[P]) Plugins(string) ([]P, error) {
	out := make([]P, len(s))
	copy(out, s)
	return out, nil
}

var (
	declMu       sync.Mutex
	declarations = make(map[string][]any)
)

// Declare announces p as available under group. It is meant to be called
// from a plugin package's init function; blank-importing the package makes
// the plugin discoverable through Declared.
func Declare(group string, p any) {
	if p == nil {
		panic("plugin: Declare of nil plugin in group " + group)
	}
	declMu.Lock()
	defer declMu.Unlock()
	declarations[group] = append(declarations[group], p)
}

// Declared is the Source backed by plugins announced with Declare.
type Declared[P any] struct{}

// Plugins returns the plugins declared for group, in declaration order.
// A declaration that does not implement P fails with ErrInvalidPlugin.
func (Declared[P]) Plugins(group string) ([]P, error) {
	declMu.Lock()
	decls := append([]any(nil), declarations[group]...)
	declMu.Unlock()

	out := make([]P, 0, len(decls))
	for _, d := range decls {
		p, ok := d.(P)
		if !ok {
			return nil, fmt.Errorf("%w: %T declared in group %q", ErrInvalidPlugin, d, group)
		}
		out = append(out, p)
	}
	return out, nil
}
