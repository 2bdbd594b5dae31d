// Package handlers implements the HTTP API: querying the snapshot, fetching
// and editing individual items, duplicate reports and rebuild control.
package handlers
