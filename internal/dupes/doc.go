// Package dupes finds visually similar media by perceptual hashing.
// Hashes are computed fresh on every run from the files themselves and are
// never persisted; a duplicate report is a point-in-time artifact of one
// snapshot.
package dupes
