// Package library builds and serves the queryable view of a media
// collection. A rebuild scans the configured roots, normalizes every
// sidecar metadata file, merges user overlays on top and publishes the
// result as an immutable snapshot behind a single atomic pointer.
//
// Snapshots are never mutated after publication. Queries, lookups and
// duplicate reports all run against whichever snapshot was current when
// they started, so a rebuild can proceed concurrently with reads.
package library
