// Package overlay reads and writes the sidecar files holding user-authored
// edits (tag additions/removals, sensitivity override, notes) for media
// items. Overlay files are the only files lightbooru ever writes; source
// metadata is never modified. Writes are atomic (temp file plus rename) and
// serialized per path.
package overlay
