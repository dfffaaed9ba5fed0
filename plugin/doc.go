// Package plugin provides a generic keyed directory of plugins.
//
// A [Registry] is built from two functions: one derives the lookup key of an
// entity (for archive openers, a version), the other lists the entities a
// plugin claims. Keeping these apart from storage lets the same registry
// serve archive openers and chunky extractors alike.
//
// Plugins reach a registry either by explicit registration or through a
// [Source]. The production source, [Declared], returns plugins that packages
// announced with [Declare] from their init functions:
//
//	func init() {
//	    plugin.Declare("sga.opener", v2Plugin{})
//	}
package plugin
