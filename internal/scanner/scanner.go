package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lightbooru/internal/alias"
	"lightbooru/internal/logging"
	"lightbooru/internal/mediatypes"
	"lightbooru/internal/overlay"
)

// MetaSuffix is appended to a media file path to form its source metadata
// path (the convention used by gallery-dl's --write-metadata).
const MetaSuffix = ".json"

// Triple is one discovered media file together with its optional source
// metadata and overlay sidecars. Paths are absolute; empty means the sidecar
// does not exist.
type Triple struct {
	MediaPath   string
	MetaPath    string
	OverlayPath string
	Size        int64
	ModTime     time.Time
	Extension   string
}

// Warning is a non-fatal problem encountered while scanning.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of one scan pass: triples in discovery order plus
// collected warnings.
type Result struct {
	Triples  []Triple
	Warnings []Warning
}

// ErrNoReadableRoots is returned when not a single root directory could be
// walked; producing a snapshot would be meaningless.
var ErrNoReadableRoots = errors.New("no readable root directory")

// Scan walks the given roots and pairs media files with their sidecars by
// exact path match. The walk is read-only. Per-entry problems become
// warnings; only a total absence of readable roots is an error.
func Scan(ctx context.Context, roots []string) (*Result, error) {
	result := &Result{}
	readable := 0

	for _, root := range roots {
		root = filepath.Clean(root)

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			result.Warnings = append(result.Warnings, Warning{
				Path:    root,
				Message: "root is not a readable directory",
			})
			continue
		}
		readable++

		if err := scanRoot(ctx, root, result); err != nil {
			return nil, err
		}
	}

	if readable == 0 {
		return nil, ErrNoReadableRoots
	}

	logging.Debug("scan complete: %d items, %d warnings", len(result.Triples), len(result.Warnings))
	return result, nil
}

// mediaEntry remembers walk-order position and file attributes for pairing.
type mediaEntry struct {
	seq     int
	size    int64
	modTime time.Time
}

func scanRoot(ctx context.Context, root string, result *Result) error {
	media := make(map[string]mediaEntry)
	metaFiles := make(map[string]bool)
	overlayFiles := make(map[string]bool)
	var order []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Path:    path,
				Message: "unreadable entry: " + err.Error(),
			})
			return nil
		}

		name := d.Name()
		// The root is walked even when its own basename is hidden; only
		// entries inside it are subject to the hidden skip.
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if name == alias.FileName {
			return nil
		}

		if _, ok := overlay.MediaPathFor(path); ok {
			overlayFiles[path] = true
			return nil
		}
		if strings.HasSuffix(name, MetaSuffix) {
			metaFiles[path] = true
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !mediatypes.IsMedia(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Path:    path,
				Message: "unreadable entry: " + err.Error(),
			})
			return nil
		}

		media[path] = mediaEntry{seq: len(order), size: info.Size(), modTime: info.ModTime()}
		order = append(order, path)
		return nil
	})
	if err != nil {
		return err
	}

	for _, mediaPath := range order {
		entry := media[mediaPath]
		triple := Triple{
			MediaPath: mediaPath,
			Size:      entry.size,
			ModTime:   entry.modTime,
			Extension: strings.ToLower(filepath.Ext(mediaPath)),
		}

		metaPath := mediaPath + MetaSuffix
		if metaFiles[metaPath] {
			triple.MetaPath = metaPath
		} else {
			result.Warnings = append(result.Warnings, Warning{
				Path:    mediaPath,
				Message: "media file has no source metadata",
			})
		}

		overlayPath := overlay.PathFor(mediaPath)
		if overlayFiles[overlayPath] {
			triple.OverlayPath = overlayPath
		}

		result.Triples = append(result.Triples, triple)
	}

	// Source metadata files whose media file is gone are reported, never
	// surfaced as items.
	var orphans []string
	for metaPath := range metaFiles {
		mediaPath := strings.TrimSuffix(metaPath, MetaSuffix)
		if _, ok := media[mediaPath]; !ok {
			orphans = append(orphans, metaPath)
		}
	}
	sort.Strings(orphans)
	for _, metaPath := range orphans {
		result.Warnings = append(result.Warnings, Warning{
			Path:    metaPath,
			Message: "source metadata has no media file",
		})
	}

	return nil
}
