package metadata

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"lightbooru/internal/logging"
)

// Normalized is the canonical projection of one source metadata record.
// Every field except RawExtra is optional; absence is expressed by the zero
// value (nil for the pointer fields, zero time for PostedAt).
type Normalized struct {
	PostID      string                 `json:"postId,omitempty"`
	AuthorName  string                 `json:"authorName,omitempty"`
	PostedAt    time.Time              `json:"postedAt,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Sensitive   *bool                  `json:"sensitive,omitempty"`
	Score       *float64               `json:"score,omitempty"`
	MediaURL    string                 `json:"mediaUrl,omitempty"`
	Width       int                    `json:"width,omitempty"`
	Height      int                    `json:"height,omitempty"`
	ContentHash string                 `json:"contentHash,omitempty"`
	RawExtra    map[string]interface{} `json:"-"`
}

// Decode parses a source metadata document into a raw record. Numbers are
// kept as json.Number so RawExtra reproduces the original values exactly.
func Decode(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Platform returns the source platform tag recorded in a raw record
// (gallery-dl writes it as "category"), lowercased. Empty when absent.
func Platform(raw map[string]interface{}) string {
	return strings.ToLower(firstString(raw, platformPaths))
}

// Normalize projects a raw source record onto the canonical field set using
// the per-platform mapping tables. It is pure: the same record always yields
// the same result, and the full original mapping is retained in RawExtra.
func Normalize(platform string, raw map[string]interface{}) Normalized {
	n := Normalized{
		PostID:      firstScalar(raw, candidatePaths(platform, fieldPostID)),
		AuthorName:  firstString(raw, candidatePaths(platform, fieldAuthor)),
		Title:       firstString(raw, candidatePaths(platform, fieldTitle)),
		Description: firstString(raw, candidatePaths(platform, fieldDescription)),
		Tags:        extractTags(raw),
		Sensitive:   firstBool(raw, candidatePaths(platform, fieldSensitive)),
		MediaURL:    firstString(raw, candidatePaths(platform, fieldMediaURL)),
		ContentHash: firstString(raw, candidatePaths(platform, fieldContentHash)),
		RawExtra:    raw,
	}

	// pixiv's sanity_level is a 0..6 scale, not a flag, so it cannot go
	// through the usual boolean candidates. Consult it only when x_restrict
	// is absent; 4 and up means R-18 territory.
	if platform == "pixiv" && n.Sensitive == nil {
		if level, ok := firstNumber(raw, []path{{"sanity_level"}}); ok {
			s := level >= 4
			n.Sensitive = &s
		}
	}

	if score, ok := firstNumber(raw, candidatePaths(platform, fieldScore)); ok {
		n.Score = &score
	}
	if w, ok := firstInt(raw, candidatePaths(platform, fieldWidth)); ok {
		n.Width = w
	}
	if h, ok := firstInt(raw, candidatePaths(platform, fieldHeight)); ok {
		n.Height = h
	}

	if stamp := firstScalar(raw, candidatePaths(platform, fieldPostedAt)); stamp != "" {
		if ts, ok := ParseTimestamp(stamp); ok {
			n.PostedAt = ts
		} else {
			logging.Warn("unparseable timestamp %q in %s record", stamp, platform)
		}
	}

	return n
}

// timestampLayouts are tried in order for non-epoch date strings. gallery-dl
// writes "2006-01-02 15:04:05"; API passthroughs keep RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseTimestamp converts an epoch-numeric or date-string value to UTC.
// Epoch values larger than 1e12 are treated as milliseconds.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		if epoch <= 0 {
			return time.Time{}, false
		}
		if epoch > 1e12 {
			epoch /= 1000
		}
		sec := int64(epoch)
		nsec := int64((epoch - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
