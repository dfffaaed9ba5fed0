// Package sga provides the low-level building blocks for opening SGA game
// archives: the header probe, the version record, open-request parsing, and
// the contract that format plugins implement.
//
// Every SGA archive starts with an 8-byte magic word followed by a version
// record of two little-endian uint16 fields (major, minor). The internal
// layout after the header differs between revisions and is the concern of
// format plugins, which turn an archive into an fs.FS.
//
// Most callers want the higher-level opener in the parent package, which
// probes the version and dispatches to a registered plugin.
package sga
