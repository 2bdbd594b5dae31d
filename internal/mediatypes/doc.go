// Package mediatypes classifies file extensions into media types and decides
// which formats the duplicate detector can hash.
package mediatypes
