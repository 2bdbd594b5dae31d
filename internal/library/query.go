package library

import (
	"sort"
	"strings"
	"time"

	"lightbooru/internal/alias"
	"lightbooru/internal/metrics"
)

// SortField specifies which key orders query results.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByPostedAt sorts by the post timestamp (the default, descending).
	SortByPostedAt SortField = "posted_at"
	// SortByScore sorts by the source score.
	SortByScore SortField = "score"
	// SortByFileSize sorts by media file size.
	SortByFileSize SortField = "file_size"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// Sort selects the result ordering. Zero value means posted_at descending.
type Sort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// Page selects an offset+limit window over the sorted, filtered result.
// Limit <= 0 means no limit.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Filter is a conjunction of predicates; zero-value fields are inactive.
type Filter struct {
	TagsAny  []string `json:"tagsAny,omitempty"`
	TagsAll  []string `json:"tagsAll,omitempty"`
	TagsNone []string `json:"tagsNone,omitempty"`

	Sensitive *bool  `json:"sensitive,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Author    string `json:"author,omitempty"`

	PostedAfter  time.Time `json:"postedAfter,omitempty"`
	PostedBefore time.Time `json:"postedBefore,omitempty"`

	// Text is a case-insensitive substring match over title, description,
	// notes and author.
	Text string `json:"text,omitempty"`

	// Aliases expands each tag term to its whole alias group before
	// matching, so any group member satisfies the term.
	Aliases alias.Map `json:"-"`
}

// expandTerm returns the term plus every alias reachable from it.
func (f Filter) expandTerm(term string) []string {
	if len(f.Aliases) == 0 {
		return []string{term}
	}
	return alias.ExpandTerms([]string{term}, f.Aliases)
}

// Query evaluates a filter against the snapshot and returns the requested
// page plus the total count of the filtered set before pagination.
//
// Predicates backed by an inverted index (tags, platform, author, date
// range) are intersected first to shrink the candidate set; only the
// survivors are scanned for the remaining predicates.
func (s *Snapshot) Query(f Filter, order Sort, page Page) ([]ViewRecord, int) {
	start := time.Now()
	defer func() {
		metrics.QueryTotal.Inc()
		metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}()

	candidates := s.indexedCandidates(f)

	var tagsNone []string
	for _, term := range normalizeTerms(f.TagsNone) {
		tagsNone = append(tagsNone, f.expandTerm(term)...)
	}
	text := strings.ToLower(strings.TrimSpace(f.Text))

	var matched []int
	for _, idx := range candidates {
		rec := &s.records[idx]

		if f.Sensitive != nil && rec.Sensitive != *f.Sensitive {
			continue
		}
		if len(tagsNone) > 0 && hasAnyTag(rec.Tags, tagsNone) {
			continue
		}
		if text != "" && !matchesText(rec, text) {
			continue
		}
		matched = append(matched, idx)
	}

	s.sortIndices(matched, order)

	total := len(matched)
	matched = applyPage(matched, page)

	out := make([]ViewRecord, len(matched))
	for i, idx := range matched {
		out[i] = s.records[idx]
	}
	return out, total
}

// indexedCandidates intersects the posting lists of every index-backed
// predicate. With no such predicate every record is a candidate.
func (s *Snapshot) indexedCandidates(f Filter) []int {
	var lists [][]int

	// Each required tag admits any member of its alias group, so a term
	// contributes the union of its group's posting lists.
	for _, tag := range normalizeTerms(f.TagsAll) {
		var postings []int
		for _, expanded := range f.expandTerm(tag) {
			postings = mergeSorted(postings, s.byTag[expanded])
		}
		lists = append(lists, postings)
	}

	if any := normalizeTerms(f.TagsAny); len(any) > 0 {
		var union []int
		for _, tag := range any {
			for _, expanded := range f.expandTerm(tag) {
				union = mergeSorted(union, s.byTag[expanded])
			}
		}
		lists = append(lists, union)
	}

	if f.Platform != "" {
		lists = append(lists, s.byPlatform[strings.ToLower(strings.TrimSpace(f.Platform))])
	}
	if f.Author != "" {
		lists = append(lists, s.byAuthor[strings.ToLower(strings.TrimSpace(f.Author))])
	}

	if !f.PostedAfter.IsZero() || !f.PostedBefore.IsZero() {
		lists = append(lists, s.dateRange(f.PostedAfter, f.PostedBefore))
	}

	if len(lists) == 0 {
		all := make([]int, len(s.records))
		for i := range all {
			all[i] = i
		}
		return all
	}

	// Intersect starting from the smallest list.
	sort.Slice(lists, func(a, b int) bool { return len(lists[a]) < len(lists[b]) })
	out := lists[0]
	for _, list := range lists[1:] {
		out = intersectSorted(out, list)
		if len(out) == 0 {
			break
		}
	}
	return out
}

// dateRange returns the sorted record indices whose PostedAt falls within
// [after, before], bounds inclusive, zero bound meaning open. Items without
// a timestamp never match a date-range query.
func (s *Snapshot) dateRange(after, before time.Time) []int {
	lo := 0
	if after.IsZero() {
		// Skip undated records, which sort before every real timestamp.
		lo = sort.Search(len(s.byDate), func(i int) bool {
			return !s.records[s.byDate[i]].PostedAt.IsZero()
		})
	} else {
		lo = sort.Search(len(s.byDate), func(i int) bool {
			return !s.records[s.byDate[i]].PostedAt.Before(after)
		})
	}

	hi := len(s.byDate)
	if !before.IsZero() {
		hi = sort.Search(len(s.byDate), func(i int) bool {
			return s.records[s.byDate[i]].PostedAt.After(before)
		})
	}

	if lo >= hi {
		return nil
	}
	out := append([]int(nil), s.byDate[lo:hi]...)
	sort.Ints(out)
	return out
}

// sortIndices orders matched record indices by the requested key with a
// stable platform/post-id/item-id tiebreak so equal keys always order the
// same way.
func (s *Snapshot) sortIndices(indices []int, order Sort) {
	field := order.Field
	if field == "" {
		field = SortByPostedAt
	}
	desc := order.Order != SortAsc
	if order.Order == "" && field != SortByPostedAt {
		desc = false
	}

	less := func(a, b *ViewRecord) int {
		switch field {
		case SortByScore:
			return compareFloat(scoreValue(a), scoreValue(b))
		case SortByFileSize:
			return compareInt64(a.FileSize, b.FileSize)
		default:
			return a.PostedAt.Compare(b.PostedAt)
		}
	}

	sort.SliceStable(indices, func(i, j int) bool {
		a, b := &s.records[indices[i]], &s.records[indices[j]]
		if c := less(a, b); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		if a.SourcePlatform != b.SourcePlatform {
			return a.SourcePlatform < b.SourcePlatform
		}
		if a.SourcePostID != b.SourcePostID {
			return a.SourcePostID < b.SourcePostID
		}
		return a.ID < b.ID
	})
}

func scoreValue(rec *ViewRecord) float64 {
	if rec.Score == nil {
		return -1 << 40
	}
	return *rec.Score
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func matchesText(rec *ViewRecord, needle string) bool {
	for _, hay := range []string{rec.Title, rec.Description, rec.Notes, rec.AuthorName} {
		if hay != "" && strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func hasAnyTag(tags, forbidden []string) bool {
	for _, tag := range tags {
		for _, f := range forbidden {
			if tag == f {
				return true
			}
		}
	}
	return false
}

func normalizeTerms(terms []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

func applyPage(indices []int, page Page) []int {
	if page.Offset > 0 {
		if page.Offset >= len(indices) {
			return nil
		}
		indices = indices[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(indices) {
		indices = indices[:page.Limit]
	}
	return indices
}

func mergeSorted(a, b []int) []int {
	if len(a) == 0 {
		return append([]int(nil), b...)
	}
	if len(b) == 0 {
		return a
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func intersectSorted(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
