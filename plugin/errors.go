package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry operations.
var (
	// ErrNotRegistered is returned when no plugin is registered for a key.
	ErrNotRegistered = errors.New("plugin: not registered")

	// ErrInvalidPlugin is returned when a declared plugin does not implement
	// the type a source was asked for.
	ErrInvalidPlugin = errors.New("plugin: invalid plugin")
)

// NotRegisteredError reports a failed lookup.
type NotRegisteredError struct {
	// Key is the derived key that was looked up.
	Key string

	// Known lists the keys present at lookup time, sorted.
	Known []string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("%s: %q (known: [%s])", ErrNotRegistered, e.Key, strings.Join(e.Known, ", "))
}

// Is reports whether target is ErrNotRegistered.
func (e *NotRegisteredError) Is(target error) bool {
	return target == ErrNotRegistered
}
