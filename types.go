package sga

import (
	sgacore "github.com/meigma/sga/core"
	"github.com/meigma/sga/plugin"
)

// Re-export types from core for the public API.
type (
	// Version identifies the layout revision of an archive.
	Version = sgacore.Version

	// Plugin constructs virtual filesystems for one or more archive versions.
	Plugin = sgacore.Plugin

	// ParseResult holds the components of an archive URL.
	ParseResult = sgacore.ParseResult

	// UnsupportedVersionError reports a detected version with no registered plugin.
	UnsupportedVersionError = sgacore.UnsupportedVersionError

	// PluginEntry is a single version to plugin association.
	PluginEntry = plugin.Entry[Version, Plugin]
)

// Re-export header constants.
const (
	MagicWord   = sgacore.MagicWord
	HeaderSize  = sgacore.HeaderSize
	PluginGroup = sgacore.PluginGroup
)

// Re-export helpers from core.
var (
	// ReadVersion validates the magic word and reads the version record.
	ReadVersion = sgacore.ReadVersion

	// WriteVersion writes the magic word followed by the version record.
	WriteVersion = sgacore.WriteVersion

	// ParseVersion parses the canonical "v{major}.{minor}" form.
	ParseVersion = sgacore.ParseVersion

	// ParseURL splits an archive URL into its components.
	ParseURL = sgacore.ParseURL

	// ResolvePath turns a resource into an absolute path.
	ResolvePath = sgacore.ResolvePath
)
