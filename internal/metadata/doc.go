// Package metadata normalizes heterogeneous per-platform source metadata
// records into one canonical field set. The mapping from source fields to
// canonical fields is declarative: each canonical field lists candidate
// source paths in priority order, with per-platform overrides tried first.
// The full original record is always retained in Normalized.RawExtra.
package metadata
