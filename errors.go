package sga

import sgacore "github.com/meigma/sga/core"

// Errors re-exported from core.
var (
	// ErrFormat is returned when a file is not an SGA archive.
	ErrFormat = sgacore.ErrFormat

	// ErrUnsupportedVersion is returned when no plugin handles an archive's version.
	ErrUnsupportedVersion = sgacore.ErrUnsupportedVersion

	// ErrConfiguration is returned for invalid open parameters.
	ErrConfiguration = sgacore.ErrConfiguration
)
