package library

import (
	"sort"
	"strings"
	"time"
)

// Snapshot is one immutable, fully-built index generation. Once built it is
// never modified, so any number of readers can share it without locking.
type Snapshot struct {
	records    []ViewRecord
	byID       map[string]int
	byTag      map[string][]int
	byPlatform map[string][]int
	byAuthor   map[string][]int
	byDate     []int // record indices ordered by PostedAt ascending
	report     ScanReport
	builtAt    time.Time
}

// BuildSnapshot aggregates merged view records into an immutable snapshot.
// Aggregation is single-threaded and ordering is taken from the records
// slice (scan discovery order), so the same record stream always produces an
// identical snapshot. Records whose ID collides with an earlier record are
// excluded and recorded as build errors; the build itself never fails.
func BuildSnapshot(records []ViewRecord, report ScanReport) *Snapshot {
	s := &Snapshot{
		byID:       make(map[string]int, len(records)),
		byTag:      make(map[string][]int),
		byPlatform: make(map[string][]int),
		byAuthor:   make(map[string][]int),
		report:     report,
		builtAt:    time.Now(),
	}

	for _, rec := range records {
		if _, dup := s.byID[rec.ID]; dup {
			s.report.Errors = append(s.report.Errors, ItemError{
				ItemID:  rec.ID,
				Path:    rec.FilePath,
				Stage:   StageBuild,
				Message: "duplicate item id, record excluded",
			})
			continue
		}

		idx := len(s.records)
		s.records = append(s.records, rec)
		s.byID[rec.ID] = idx

		for _, tag := range rec.Tags {
			s.byTag[tag] = append(s.byTag[tag], idx)
		}
		if rec.SourcePlatform != "" {
			s.byPlatform[rec.SourcePlatform] = append(s.byPlatform[rec.SourcePlatform], idx)
		}
		if rec.AuthorName != "" {
			key := strings.ToLower(rec.AuthorName)
			s.byAuthor[key] = append(s.byAuthor[key], idx)
		}
	}

	s.byDate = make([]int, len(s.records))
	for i := range s.byDate {
		s.byDate[i] = i
	}
	sort.SliceStable(s.byDate, func(a, b int) bool {
		return s.records[s.byDate[a]].PostedAt.Before(s.records[s.byDate[b]].PostedAt)
	})

	s.report.ItemCount = len(s.records)
	return s
}

// Len returns the number of records in the primary sequence.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Records returns the primary sequence in discovery order. The returned
// slice is shared; callers must not modify it.
func (s *Snapshot) Records() []ViewRecord {
	return s.records
}

// Get looks up one record by item ID.
func (s *Snapshot) Get(id string) (ViewRecord, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return ViewRecord{}, false
	}
	return s.records[idx], true
}

// Report returns the scan report captured when this snapshot was built.
func (s *Snapshot) Report() ScanReport {
	return s.report
}

// BuiltAt returns the snapshot construction time.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Tags returns every distinct tag with its item count, sorted by descending
// count then name. Used by front-ends for tag clouds and completion.
func (s *Snapshot) Tags() []TagCount {
	out := make([]TagCount, 0, len(s.byTag))
	for tag, postings := range s.byTag {
		out = append(out, TagCount{Tag: tag, Count: len(postings)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Platforms returns every distinct source platform with its item count,
// sorted by descending count then name.
func (s *Snapshot) Platforms() []TagCount {
	out := make([]TagCount, 0, len(s.byPlatform))
	for platform, postings := range s.byPlatform {
		out = append(out, TagCount{Tag: platform, Count: len(postings)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// TagCount pairs a tag (or platform) with the number of items carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
