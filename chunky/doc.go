// Package chunky dispatches extraction of Relic Chunky media files to
// pluggable extractors.
//
// Chunky files carry audio (fda), models (whm), and textures (wtp, rtx, rsh)
// in a chunk-based container. Decoding them is the job of [Extractor]
// implementations that declare themselves under [PluginGroup]; this package
// only validates the input and routes to the extractor registered by name.
package chunky
