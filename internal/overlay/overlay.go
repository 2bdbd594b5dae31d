package overlay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Suffix is appended to a media file path to form its overlay path.
const Suffix = ".booru.json"

// Overlay holds user-authored edits for one media item. It lives in a
// sidecar file next to the media file and never touches the source metadata.
type Overlay struct {
	TagsAdded         []string  `json:"tags_added,omitempty"`
	TagsRemoved       []string  `json:"tags_removed,omitempty"`
	SensitiveOverride *bool     `json:"sensitive_override,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	EditedAt          time.Time `json:"edited_at,omitempty"`

	// extra preserves keys written by other tools so a rewrite does not
	// discard them.
	extra map[string]json.RawMessage
}

// Delta describes one edit operation to apply on top of an overlay.
type Delta struct {
	AddTags        []string
	RemoveTags     []string
	SetSensitive   *bool
	ClearSensitive bool
	Notes          *string
}

// IsZero reports whether the delta would change nothing.
func (d Delta) IsZero() bool {
	return len(d.AddTags) == 0 && len(d.RemoveTags) == 0 &&
		d.SetSensitive == nil && !d.ClearSensitive && d.Notes == nil
}

// PathFor returns the overlay sidecar path for a media file.
func PathFor(mediaPath string) string {
	return mediaPath + Suffix
}

// MediaPathFor strips the overlay suffix, returning the media path an
// overlay file belongs to. The second return is false if path is not an
// overlay path.
func MediaPathFor(path string) (string, bool) {
	if !strings.HasSuffix(path, Suffix) {
		return "", false
	}
	return strings.TrimSuffix(path, Suffix), true
}

// knownKeys are the overlay fields this package owns.
var knownKeys = map[string]bool{
	"tags_added":         true,
	"tags_removed":       true,
	"sensitive_override": true,
	"notes":              true,
	"edited_at":          true,
}

// Load reads an overlay file. A missing file returns (nil, nil): absence
// means "no edits". A malformed file returns an error so the caller can
// record it and treat the overlay as absent.
func Load(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read overlay %s: %w", path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse overlay %s: %w", path, err)
	}

	var o Overlay
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overlay %s: %w", path, err)
	}
	o.TagsAdded = normalizeTags(o.TagsAdded)
	o.TagsRemoved = normalizeTags(o.TagsRemoved)

	for key, val := range fields {
		if knownKeys[key] {
			continue
		}
		if o.extra == nil {
			o.extra = make(map[string]json.RawMessage)
		}
		o.extra[key] = val
	}

	return &o, nil
}

// Save writes the overlay atomically: a temp file in the same directory is
// written, synced and renamed over the destination, so readers never observe
// a partial file.
func (o *Overlay) Save(path string) error {
	doc := make(map[string]interface{}, len(o.extra)+5)
	for key, val := range o.extra {
		doc[key] = val
	}
	if len(o.TagsAdded) > 0 {
		doc["tags_added"] = o.TagsAdded
	}
	if len(o.TagsRemoved) > 0 {
		doc["tags_removed"] = o.TagsRemoved
	}
	if o.SensitiveOverride != nil {
		doc["sensitive_override"] = *o.SensitiveOverride
	}
	if o.Notes != "" {
		doc["notes"] = o.Notes
	}
	if !o.EditedAt.IsZero() {
		doc["edited_at"] = o.EditedAt.UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal overlay %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".overlay-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp overlay in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp overlay %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp overlay %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp overlay %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename overlay into place %s: %w", path, err)
	}
	return nil
}

// Apply layers a delta onto the overlay. Added tags drop out of the removed
// set and vice versa, so the two sets stay disjoint.
func (o *Overlay) Apply(delta Delta) {
	add := normalizeTags(delta.AddTags)
	remove := normalizeTags(delta.RemoveTags)

	if len(add) > 0 {
		o.TagsAdded = mergeTags(o.TagsAdded, add)
		o.TagsRemoved = subtractTags(o.TagsRemoved, add)
	}
	if len(remove) > 0 {
		o.TagsRemoved = mergeTags(o.TagsRemoved, remove)
		o.TagsAdded = subtractTags(o.TagsAdded, remove)
	}

	if delta.ClearSensitive {
		o.SensitiveOverride = nil
	} else if delta.SetSensitive != nil {
		v := *delta.SetSensitive
		o.SensitiveOverride = &v
	}

	if delta.Notes != nil {
		o.Notes = *delta.Notes
	}

	o.EditedAt = time.Now().UTC().Truncate(time.Second)
}

// ApplyToFile loads, updates and atomically rewrites the overlay for one
// media file. Concurrent calls for the same media path are serialized; the
// lock is always released.
func ApplyToFile(mediaPath string, delta Delta) (*Overlay, error) {
	path := PathFor(filepath.Clean(mediaPath))

	unlock := lockPath(path)
	defer unlock()

	o, err := Load(path)
	if err != nil {
		return nil, err
	}
	if o == nil {
		o = &Overlay{}
	}

	o.Apply(delta)

	if err := o.Save(path); err != nil {
		return nil, err
	}
	return o, nil
}

// normalizeTags trims, lowercases and dedupes, keeping first-seen order.
func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func mergeTags(current, incoming []string) []string {
	seen := make(map[string]bool, len(current))
	for _, tag := range current {
		seen[tag] = true
	}
	for _, tag := range incoming {
		if !seen[tag] {
			seen[tag] = true
			current = append(current, tag)
		}
	}
	return current
}

func subtractTags(current, drop []string) []string {
	if len(current) == 0 || len(drop) == 0 {
		return current
	}
	dropSet := make(map[string]bool, len(drop))
	for _, tag := range drop {
		dropSet[tag] = true
	}
	var out []string
	for _, tag := range current {
		if !dropSet[tag] {
			out = append(out, tag)
		}
	}
	return out
}

// ExtraKeys lists foreign keys carried by the overlay file, sorted. Used by
// the CLI to show what a rewrite will preserve.
func (o *Overlay) ExtraKeys() []string {
	if len(o.extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(o.extra))
	for key := range o.extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
