package metadata

import (
	"encoding/json"
	"strconv"
	"strings"
)

// lookup walks a path through nested objects in a raw record.
func lookup(raw map[string]interface{}, p path) (interface{}, bool) {
	if len(p) == 0 {
		return nil, false
	}

	var current interface{} = raw
	for _, key := range p {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// firstString returns the first non-empty string value found at the given
// paths. Whitespace-only strings are skipped.
func firstString(raw map[string]interface{}, paths []path) string {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// firstScalar returns the first string or number value at the given paths,
// rendered as a string. Numbers keep their source representation.
func firstScalar(raw map[string]interface{}, paths []path) string {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// firstNumber returns the first numeric value at the given paths. Numeric
// strings count.
func firstNumber(raw map[string]interface{}, paths []path) (float64, bool) {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if f, ok := asNumber(v); ok {
			return f, true
		}
	}
	return 0, false
}

func asNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// firstInt is firstNumber truncated to int, rejecting non-positive values.
func firstInt(raw map[string]interface{}, paths []path) (int, bool) {
	f, ok := firstNumber(raw, paths)
	if !ok || f <= 0 {
		return 0, false
	}
	return int(f), true
}

// firstBool interprets the first value at the given paths as a boolean.
// Accepts JSON booleans, 0/1 numbers, true/false-style strings and the
// rating keywords used by booru-style sites. Returns nil when no path holds
// an interpretable value.
func firstBool(raw map[string]interface{}, paths []path) *bool {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if b, ok := asBool(v); ok {
			return &b
		}
	}
	return nil
}

func asBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n != 0, true
		}
		return false, false
	case float64:
		return val != 0, true
	case string:
		return parseBoolString(val)
	default:
		return false, false
	}
}

func parseBoolString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	case "sensitive", "nsfw", "adult", "explicit", "questionable", "r18", "mature", "e", "q":
		return true, true
	case "safe", "sfw", "general", "s", "g":
		return false, true
	default:
		return false, false
	}
}

// extractTags unions every tag-bearing field into one flat, ordered set of
// lowercase trimmed strings. First occurrence wins the position.
func extractTags(raw map[string]interface{}) []string {
	var tags []string
	seen := make(map[string]bool)

	for _, p := range tagPaths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		collectTags(v, &tags, seen)
	}

	return tags
}

func collectTags(v interface{}, tags *[]string, seen map[string]bool) {
	switch val := v.(type) {
	case string:
		for _, tag := range splitTagString(val) {
			pushTag(tag, tags, seen)
		}
	case []interface{}:
		for _, item := range val {
			switch entry := item.(type) {
			case string:
				pushTag(entry, tags, seen)
			case map[string]interface{}:
				// Object-shaped tags: twitter hashtags use "text",
				// some boorus use "name" or "tag".
				for _, key := range []string{"name", "tag", "text"} {
					if s, ok := entry[key].(string); ok {
						pushTag(s, tags, seen)
					}
				}
			}
		}
	}
}

// splitTagString splits a packed tag field on commas when present, otherwise
// on whitespace (danbooru tag_string style).
func splitTagString(s string) []string {
	if strings.Contains(s, ",") {
		return strings.Split(s, ",")
	}
	return strings.Fields(s)
}

func pushTag(tag string, tags *[]string, seen map[string]bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || seen[tag] {
		return
	}
	seen[tag] = true
	*tags = append(*tags, tag)
}
