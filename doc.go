// Package sga opens SGA game archives as virtual filesystems without the
// caller knowing which format revision a file uses.
//
// An [Opener] probes the archive header for its version and dispatches to the
// format plugin registered for that version. Plugins return an fs.FS, so the
// result works with fs.WalkDir, fs.ReadFile, and the rest of the standard
// library.
//
// # Quick Start
//
// Plugin packages declare themselves at init time; blank-import the ones you
// need and open an archive:
//
//	import _ "example.com/sga-v2"
//
//	fsys, err := sga.OpenFile("~/games/dow/W40k.sga")
//	if err != nil {
//	    return err
//	}
//	data, err := fs.ReadFile(fsys, "data/art/ui/loading.tga")
//
// # Explicit Registries
//
// The package-level functions share a lazily constructed default opener.
// Construct an opener directly to control which plugins it knows:
//
//	o, err := sga.NewOpener(
//	    sga.WithAutoload(false),
//	    sga.WithPlugins(v2Plugin{}),
//	)
//	fsys, err := o.Open("sga://W40k.sga", sga.OpenWithCwd(dir))
//
// # Errors
//
// Files that are not archives fail with [ErrFormat]. Archives of a version no
// plugin handles fail with [ErrUnsupportedVersion]. Invalid parameters fail
// with [ErrConfiguration]. Errors from a plugin are returned unchanged.
package sga
