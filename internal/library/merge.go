package library

import (
	"lightbooru/internal/metadata"
	"lightbooru/internal/overlay"
)

// Merge combines one media item, its normalized source metadata and its
// optional overlay into a view record. Pure function: same inputs always
// yield the same record, and neither input is modified.
//
// Precedence is fixed: effective tags are (source tags plus overlay
// additions) minus overlay removals; the overlay never replaces the source
// tag set wholesale. The sensitivity override wins when present. Every other
// field comes from the source, with notes being the only overlay-authored
// addition.
func Merge(item MediaItem, n metadata.Normalized, o *overlay.Overlay) ViewRecord {
	rec := ViewRecord{
		MediaItem:   item,
		Title:       n.Title,
		Description: n.Description,
		AuthorName:  n.AuthorName,
		PostedAt:    n.PostedAt,
		Score:       n.Score,
		MediaURL:    n.MediaURL,
		Width:       n.Width,
		Height:      n.Height,
		ContentHash: n.ContentHash,
		RawExtra:    n.RawExtra,
	}

	if n.RawExtra != nil {
		rec.PostURL = metadata.PostURL(item.SourcePlatform, n.RawExtra)
	}

	if o == nil {
		rec.Tags = mergeTags(n.Tags, nil, nil)
		rec.Sensitive = n.Sensitive != nil && *n.Sensitive
		return rec
	}

	rec.HasOverlay = true
	rec.Tags = mergeTags(n.Tags, o.TagsAdded, o.TagsRemoved)
	rec.Notes = o.Notes

	switch {
	case o.SensitiveOverride != nil:
		rec.Sensitive = *o.SensitiveOverride
	case n.Sensitive != nil:
		rec.Sensitive = *n.Sensitive
	}

	return rec
}

// mergeTags computes (source ∪ added) − removed, preserving source order
// then addition order. Always returns a non-nil slice so view records
// serialize with an empty tag list instead of null.
func mergeTags(source, added, removed []string) []string {
	removeSet := make(map[string]bool, len(removed))
	for _, tag := range removed {
		removeSet[tag] = true
	}

	out := make([]string, 0, len(source)+len(added))
	seen := make(map[string]bool, len(source)+len(added))
	for _, tag := range source {
		if !removeSet[tag] && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	for _, tag := range added {
		if !removeSet[tag] && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
