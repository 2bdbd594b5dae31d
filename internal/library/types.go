package library

import (
	"crypto/md5" //nolint:gosec // MD5 derives stable item IDs, not security
	"fmt"
	"path/filepath"
	"time"

	"lightbooru/internal/scanner"
)

// MediaItem identifies one discovered media file. Items are immutable for
// the lifetime of a snapshot; the next scan supersedes them.
type MediaItem struct {
	ID             string    `json:"id"`
	FilePath       string    `json:"filePath"`
	FileSize       int64     `json:"fileSize"`
	ModTime        time.Time `json:"modTime"`
	Extension      string    `json:"extension"`
	SourcePlatform string    `json:"sourcePlatform,omitempty"`
	SourcePostID   string    `json:"sourcePostId,omitempty"`
}

// ItemID derives the stable identifier for a media path. Path-derived rather
// than content-derived, so re-encoding a file keeps its identity.
func ItemID(mediaPath string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(filepath.Clean(mediaPath)))) //nolint:gosec // ID derivation, not security
}

// ViewRecord is the merged, query-facing entity: the media item plus the
// canonical metadata fields with user edits applied. This is the only shape
// the query engine and front-ends see.
type ViewRecord struct {
	MediaItem

	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	AuthorName  string    `json:"authorName,omitempty"`
	PostedAt    time.Time `json:"postedAt,omitempty"`
	Score       *float64  `json:"score,omitempty"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
	PostURL     string    `json:"postUrl,omitempty"`

	Tags       []string `json:"tags"`
	Sensitive  bool     `json:"sensitive"`
	Notes      string   `json:"notes,omitempty"`
	HasOverlay bool     `json:"hasOverlay"`

	// RawExtra carries the full original source mapping for advanced
	// consumers; omitted from list responses.
	RawExtra map[string]interface{} `json:"-"`
}

// ErrorStage classifies where a per-item error occurred.
type ErrorStage string

const (
	// StageMetadata marks a malformed source metadata file.
	StageMetadata ErrorStage = "metadata"
	// StageOverlay marks a malformed overlay file.
	StageOverlay ErrorStage = "overlay"
	// StageBuild marks an item the index builder had to exclude.
	StageBuild ErrorStage = "build"
)

// ItemError is one non-fatal per-item problem attached to a snapshot report.
type ItemError struct {
	ItemID  string     `json:"itemId,omitempty"`
	Path    string     `json:"path"`
	Stage   ErrorStage `json:"stage"`
	Message string     `json:"message"`
}

// ScanReport summarizes one rebuild: what was found and what went wrong,
// without any of it having failed the rebuild.
type ScanReport struct {
	ID        string            `json:"id"`
	StartedAt time.Time         `json:"startedAt"`
	Duration  time.Duration     `json:"duration"`
	ItemCount int               `json:"itemCount"`
	Warnings  []scanner.Warning `json:"warnings,omitempty"`
	Errors    []ItemError       `json:"errors,omitempty"`
}
