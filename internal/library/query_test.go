package library

import (
	"testing"
	"time"

	"lightbooru/internal/alias"
)

func floatPtr(f float64) *float64 { return &f }

// querySnapshot builds a small fixed collection exercising every index.
func querySnapshot() *Snapshot {
	day := func(d int) time.Time {
		return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
	}
	records := []ViewRecord{
		{
			MediaItem: MediaItem{ID: "a", FilePath: "/lib/a.jpg", FileSize: 100, SourcePlatform: "twitter"},
			AuthorName: "Alice", PostedAt: day(1), Score: floatPtr(10),
			Tags: []string{"sky", "cat"}, Sensitive: true,
		},
		{
			MediaItem: MediaItem{ID: "b", FilePath: "/lib/b.jpg", FileSize: 300, SourcePlatform: "twitter"},
			AuthorName: "Alice", PostedAt: day(10), Score: floatPtr(5),
			Tags: []string{"sky"}, Title: "Harbor at dawn",
		},
		{
			MediaItem: MediaItem{ID: "c", FilePath: "/lib/c.jpg", FileSize: 200, SourcePlatform: "pixiv"},
			AuthorName: "Bob", PostedAt: day(20),
			Tags: []string{"cat", "dog"},
		},
		{
			MediaItem: MediaItem{ID: "d", FilePath: "/lib/d.jpg", FileSize: 50, SourcePlatform: "pixiv"},
			Tags: []string{}, Notes: "keeper",
		},
	}
	return BuildSnapshot(records, ScanReport{})
}

func resultIDs(recs []ViewRecord) []string {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueryFilters(t *testing.T) {
	snap := querySnapshot()

	tests := []struct {
		name   string
		filter Filter
		sort   Sort
		want   []string
	}{
		{
			name: "empty filter matches everything newest first",
			want: []string{"c", "b", "a", "d"},
		},
		{
			name:   "tags all",
			filter: Filter{TagsAll: []string{"sky", "cat"}},
			want:   []string{"a"},
		},
		{
			name:   "tags any",
			filter: Filter{TagsAny: []string{"dog", "sky"}},
			want:   []string{"c", "b", "a"},
		},
		{
			name:   "tags none",
			filter: Filter{TagsNone: []string{"cat"}},
			want:   []string{"b", "d"},
		},
		{
			name:   "all any and none combined",
			filter: Filter{TagsAll: []string{"cat"}, TagsAny: []string{"sky", "dog"}, TagsNone: []string{"dog"}},
			want:   []string{"a"},
		},
		{
			name:   "sensitive true",
			filter: Filter{Sensitive: boolPtr(true)},
			want:   []string{"a"},
		},
		{
			name:   "sensitive false",
			filter: Filter{Sensitive: boolPtr(false)},
			want:   []string{"c", "b", "d"},
		},
		{
			name:   "platform",
			filter: Filter{Platform: "pixiv"},
			want:   []string{"c", "d"},
		},
		{
			name:   "author case-insensitive",
			filter: Filter{Author: "ALICE"},
			want:   []string{"b", "a"},
		},
		{
			name:   "date range excludes undated",
			filter: Filter{PostedAfter: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)},
			want:   []string{"c", "b"},
		},
		{
			name: "date window",
			filter: Filter{
				PostedAfter:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				PostedBefore: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			},
			want: []string{"b", "a"},
		},
		{
			name:   "text over title",
			filter: Filter{Text: "harbor"},
			want:   []string{"b"},
		},
		{
			name:   "text over notes",
			filter: Filter{Text: "keeper"},
			want:   []string{"d"},
		},
		{
			name:   "unknown tag matches nothing",
			filter: Filter{TagsAll: []string{"nope"}},
			want:   []string{},
		},
		{
			name:   "tag terms normalized",
			filter: Filter{TagsAll: []string{"  SKY  "}},
			want:   []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := snap.Query(tt.filter, tt.sort, Page{})
			if total != len(tt.want) {
				t.Errorf("total = %d, want %d", total, len(tt.want))
			}
			if !equalIDs(resultIDs(got), tt.want) {
				t.Errorf("ids = %v, want %v", resultIDs(got), tt.want)
			}
		})
	}
}

func TestQueryAliasExpansion(t *testing.T) {
	snap := querySnapshot()
	aliases := alias.Map{
		"cat":    {"kitty"},
		"kitty":  {"cat"},
		"feline": {"cat", "kitty"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "all term matches via alias",
			filter: Filter{TagsAll: []string{"kitty"}, Aliases: aliases},
			want:   []string{"c", "a"},
		},
		{
			name:   "none excludes whole group",
			filter: Filter{TagsNone: []string{"kitty"}, Aliases: aliases},
			want:   []string{"b", "d"},
		},
		{
			name:   "transitive reach through the map",
			filter: Filter{TagsAny: []string{"feline"}, Aliases: aliases},
			want:   []string{"c", "a"},
		},
		{
			name:   "no aliases keeps exact matching",
			filter: Filter{TagsAll: []string{"kitty"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := snap.Query(tt.filter, Sort{}, Page{})
			if !equalIDs(resultIDs(got), tt.want) {
				t.Errorf("ids = %v, want %v", resultIDs(got), tt.want)
			}
		})
	}
}

func TestQuerySorting(t *testing.T) {
	snap := querySnapshot()

	tests := []struct {
		name string
		sort Sort
		want []string
	}{
		{"default posted desc, undated last", Sort{}, []string{"c", "b", "a", "d"}},
		{"posted asc, undated first", Sort{Field: SortByPostedAt, Order: SortAsc}, []string{"d", "a", "b", "c"}},
		{"score asc, missing score lowest", Sort{Field: SortByScore, Order: SortAsc}, []string{"c", "d", "b", "a"}},
		{"score desc", Sort{Field: SortByScore, Order: SortDesc}, []string{"a", "b", "c", "d"}},
		{"file size asc", Sort{Field: SortByFileSize, Order: SortAsc}, []string{"d", "a", "c", "b"}},
		{"file size desc", Sort{Field: SortByFileSize, Order: SortDesc}, []string{"b", "c", "a", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := snap.Query(Filter{}, tt.sort, Page{})
			if !equalIDs(resultIDs(got), tt.want) {
				t.Errorf("ids = %v, want %v", resultIDs(got), tt.want)
			}
		})
	}
}

func TestQueryPagination(t *testing.T) {
	snap := querySnapshot()

	tests := []struct {
		name      string
		page      Page
		want      []string
		wantTotal int
	}{
		{"first page", Page{Limit: 2}, []string{"c", "b"}, 4},
		{"second page", Page{Offset: 2, Limit: 2}, []string{"a", "d"}, 4},
		{"offset past end", Page{Offset: 10, Limit: 2}, []string{}, 4},
		{"no limit", Page{}, []string{"c", "b", "a", "d"}, 4},
		{"partial last page", Page{Offset: 3, Limit: 5}, []string{"d"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := snap.Query(Filter{}, Sort{}, tt.page)
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if !equalIDs(resultIDs(got), tt.want) {
				t.Errorf("ids = %v, want %v", resultIDs(got), tt.want)
			}
		})
	}
}

func TestQueryDeterministicTiebreak(t *testing.T) {
	// All records share the same timestamp, so ordering falls through to
	// platform, post ID, then item ID.
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []ViewRecord{
		{MediaItem: MediaItem{ID: "z", SourcePlatform: "twitter", SourcePostID: "2"}, PostedAt: ts, Tags: []string{}},
		{MediaItem: MediaItem{ID: "y", SourcePlatform: "pixiv", SourcePostID: "9"}, PostedAt: ts, Tags: []string{}},
		{MediaItem: MediaItem{ID: "x", SourcePlatform: "twitter", SourcePostID: "1"}, PostedAt: ts, Tags: []string{}},
	}
	snap := BuildSnapshot(records, ScanReport{})

	want := []string{"y", "x", "z"}
	for i := 0; i < 5; i++ {
		got, _ := snap.Query(Filter{}, Sort{}, Page{})
		if !equalIDs(resultIDs(got), want) {
			t.Fatalf("run %d: ids = %v, want %v", i, resultIDs(got), want)
		}
	}
}
