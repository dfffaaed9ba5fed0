package sga

import "io/fs"

// PluginGroup is the declaration group under which format plugins announce
// themselves.
const PluginGroup = "sga.opener"

// Plugin constructs virtual filesystems for one or more archive versions.
//
// A single plugin may claim several versions, typically minor revisions that
// share a layout. OpenFS receives the open request exactly as the caller
// supplied it and owns the writeable and create semantics of its format.
type Plugin interface {
	// Protocols returns the URL schemes the plugin serves.
	Protocols() []string

	// Versions returns the archive versions the plugin can open.
	Versions() []Version

	// String returns a human-readable description for listings.
	String() string

	// OpenFS opens the archive described by the request.
	OpenFS(fsURL string, parsed ParseResult, writeable, create bool, cwd string) (fs.FS, error)
}
