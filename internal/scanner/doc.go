// Package scanner discovers (media file, source metadata, overlay) triples
// under a set of root directories. Sidecars are matched by exact path suffix
// convention: media.ext + ".json" for source metadata, media.ext +
// ".booru.json" for user edits. The walk never writes to disk.
package scanner
