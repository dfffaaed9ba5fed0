package sga

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for archive operations.
var (
	// ErrFormat is returned when a stream is not an SGA archive: the magic
	// word does not match or the header is truncated.
	ErrFormat = errors.New("sga: not an archive")

	// ErrUnsupportedVersion is returned when an archive has a well-formed
	// header but no plugin handles its version.
	ErrUnsupportedVersion = errors.New("sga: unsupported version")

	// ErrConfiguration is returned when the caller supplied an invalid
	// combination of open parameters.
	ErrConfiguration = errors.New("sga: invalid configuration")
)

// UnsupportedVersionError reports a detected version with no registered plugin.
type UnsupportedVersionError struct {
	// Version is the version read from the archive header.
	Version Version

	// Known lists the versions that had a plugin at lookup time.
	Known []Version
}

func (e *UnsupportedVersionError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("%s: no plugin registered for %s (no plugins loaded)", ErrUnsupportedVersion, e.Version)
	}
	known := make([]string, len(e.Known))
	for i, v := range e.Known {
		known[i] = v.String()
	}
	return fmt.Sprintf("%s: no plugin registered for %s (known: %s)",
		ErrUnsupportedVersion, e.Version, strings.Join(known, ", "))
}

// Is reports whether target is ErrUnsupportedVersion.
func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}
