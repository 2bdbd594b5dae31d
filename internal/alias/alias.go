package alias

import (
	"sort"
	"strings"
)

// FileName is the per-root alias file, a JSON array of term groups:
// [["yurucamp", "ゆるキャン", "摇曳露营"], ...].
const FileName = "alias.json"

// Groups is the on-disk representation: each inner slice is a set of terms
// that mean the same thing.
type Groups [][]string

// Map associates each term with every other term in its group.
type Map map[string][]string

// Warning reports a problem with one alias file; alias problems never fail a
// scan or search.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// NormalizeTerm trims and lowercases a search term. Returns false for
// whitespace-only input.
func NormalizeTerm(term string) (string, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	return term, term != ""
}

// NormalizeTerms normalizes and dedupes, keeping first-seen order.
func NormalizeTerms(terms []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, term := range terms {
		normalized, ok := NormalizeTerm(term)
		if !ok || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

// NormalizeGroups merges transitively-connected groups (two groups sharing a
// term become one), drops groups with fewer than two terms, and sorts the
// result deterministically.
func NormalizeGroups(groups Groups) Groups {
	graph := make(map[string]map[string]bool)

	for _, group := range groups {
		terms := NormalizeTerms(group)
		if len(terms) < 2 {
			continue
		}
		for _, term := range terms {
			if graph[term] == nil {
				graph[term] = make(map[string]bool)
			}
		}
		anchor := terms[0]
		for _, term := range terms[1:] {
			graph[anchor][term] = true
			graph[term][anchor] = true
		}
	}

	nodes := make([]string, 0, len(graph))
	for term := range graph {
		nodes = append(nodes, term)
	}
	sort.Strings(nodes)

	var out Groups
	seen := make(map[string]bool)
	for _, start := range nodes {
		if seen[start] {
			continue
		}

		// BFS over the term graph collects one connected component.
		component := []string{}
		queue := []string{start}
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for next := range graph[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}

		sort.Strings(component)
		if len(component) >= 2 {
			out = append(out, component)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return len(out[i]) < len(out[j])
	})
	return out
}

// MapFromGroups builds the bidirectional term map from normalized groups.
func MapFromGroups(groups Groups) Map {
	out := make(Map)
	for _, group := range NormalizeGroups(groups) {
		for _, term := range group {
			for _, other := range group {
				if other != term && !contains(out[term], other) {
					out[term] = append(out[term], other)
				}
			}
		}
	}
	return out
}

// ExpandTerms adds every term reachable through the alias map to the input
// set, breadth-first, keeping encounter order. Input terms always come first.
func ExpandTerms(terms []string, m Map) []string {
	if len(terms) == 0 {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	queue := make([]string, 0, len(terms))
	for _, term := range terms {
		if !seen[term] {
			seen[term] = true
			out = append(out, term)
			queue = append(queue, term)
		}
	}

	for len(queue) > 0 {
		term := queue[0]
		queue = queue[1:]
		aliases := append([]string(nil), m[term]...)
		sort.Strings(aliases)
		for _, a := range aliases {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
				queue = append(queue, a)
			}
		}
	}
	return out
}

// MergeTerms adds the given terms as one alias group, coalescing with any
// existing groups they overlap. Reports whether the groups changed.
func MergeTerms(groups Groups, terms []string) (Groups, bool) {
	current := NormalizeGroups(groups)

	incoming := NormalizeTerms(terms)
	if len(incoming) < 2 {
		return current, false
	}

	incomingSet := make(map[string]bool, len(incoming))
	for _, term := range incoming {
		incomingSet[term] = true
	}

	merged := append([]string(nil), incoming...)
	var kept Groups
	for _, group := range current {
		overlaps := false
		for _, term := range group {
			if incomingSet[term] {
				overlaps = true
				break
			}
		}
		if overlaps {
			merged = append(merged, group...)
		} else {
			kept = append(kept, group)
		}
	}
	kept = append(kept, merged)

	next := NormalizeGroups(kept)
	return next, !equalGroups(current, next)
}

// RemoveTerms deletes the given terms from every group, dropping groups left
// with fewer than two members. Reports whether the groups changed.
func RemoveTerms(groups Groups, terms []string) (Groups, bool) {
	current := NormalizeGroups(groups)

	removeSet := make(map[string]bool)
	for _, term := range NormalizeTerms(terms) {
		removeSet[term] = true
	}
	if len(removeSet) == 0 {
		return current, false
	}

	var kept Groups
	for _, group := range current {
		var remaining []string
		for _, term := range group {
			if !removeSet[term] {
				remaining = append(remaining, term)
			}
		}
		if len(remaining) >= 2 {
			kept = append(kept, remaining)
		}
	}

	next := NormalizeGroups(kept)
	return next, !equalGroups(current, next)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func equalGroups(a, b Groups) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
