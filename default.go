package sga

import (
	"io/fs"
	"sync"

	"github.com/meigma/sga/plugin"
)

var defaultOpener = sync.OnceValues(func() (*Opener, error) {
	return NewOpener()
})

// Default returns the process-wide opener used by the package-level
// functions. It is constructed on first use and autoloads declared plugins
// at that moment; plugins declared later must be registered explicitly.
func Default() (*Opener, error) {
	return defaultOpener()
}

// DeclarePlugin announces p to openers that autoload from PluginGroup.
// Call it from a plugin package's init function.
func DeclarePlugin(p Plugin) {
	plugin.Declare(PluginGroup, p)
}

// Open opens fsURL with the default opener.
func Open(fsURL string, opts ...OpenOption) (fs.FS, error) {
	o, err := Default()
	if err != nil {
		return nil, err
	}
	return o.Open(fsURL, opts...)
}

// OpenFile opens an existing archive read-only with the default opener.
func OpenFile(path string) (fs.FS, error) {
	o, err := Default()
	if err != nil {
		return nil, err
	}
	return o.OpenFile(path)
}
