package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"lightbooru/internal/overlay"
	"lightbooru/internal/scanner"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixtureLibrary lays out a small collection on disk:
//
//	a.jpg + metadata + overlay (removes a source tag, adds one, flips sensitive)
//	b.png + metadata
//	c.gif without metadata
func fixtureLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.jpg"), "jpeg-bytes")
	writeFile(t, filepath.Join(dir, "a.jpg.json"),
		`{"category": "danbooru", "id": 101, "tag_string": "sky cat", "rating": "s"}`)
	writeFile(t, filepath.Join(dir, "a.jpg.booru.json"),
		`{"tags_added": ["favorite"], "tags_removed": ["cat"], "sensitive_override": true}`)

	writeFile(t, filepath.Join(dir, "b.png"), "png-bytes")
	writeFile(t, filepath.Join(dir, "b.png.json"),
		`{"category": "twitter", "tweet_id": 555, "author": {"name": "Rin"}, "hashtags": ["sky"]}`)

	writeFile(t, filepath.Join(dir, "c.gif"), "gif-bytes")

	return New([]string{dir}), dir
}

func TestRebuildMergesAllLayers(t *testing.T) {
	lib, dir := fixtureLibrary(t)

	snap, err := lib.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 3 {
		t.Fatalf("Len = %d, want 3", snap.Len())
	}
	if lib.Current() != snap {
		t.Error("rebuild did not publish its snapshot")
	}

	a, ok := snap.Get(ItemID(filepath.Join(dir, "a.jpg")))
	if !ok {
		t.Fatal("a.jpg missing from snapshot")
	}
	wantTags := []string{"sky", "favorite"}
	if len(a.Tags) != 2 || a.Tags[0] != wantTags[0] || a.Tags[1] != wantTags[1] {
		t.Errorf("a.jpg tags = %v, want %v", a.Tags, wantTags)
	}
	if !a.Sensitive {
		t.Error("sensitive_override=true should beat the safe source rating")
	}
	if !a.HasOverlay {
		t.Error("a.jpg should report an overlay")
	}
	if a.SourcePlatform != "danbooru" {
		t.Errorf("platform = %q, want danbooru", a.SourcePlatform)
	}

	b, ok := snap.Get(ItemID(filepath.Join(dir, "b.png")))
	if !ok {
		t.Fatal("b.png missing from snapshot")
	}
	if b.AuthorName != "Rin" {
		t.Errorf("author = %q, want Rin", b.AuthorName)
	}
	if b.HasOverlay {
		t.Error("b.png has no overlay file")
	}

	// c.gif stays in the sequence with bare file facts and a warning.
	c, ok := snap.Get(ItemID(filepath.Join(dir, "c.gif")))
	if !ok {
		t.Fatal("media without metadata must still be indexed")
	}
	if len(c.Tags) != 0 {
		t.Errorf("c.gif tags = %v, want empty", c.Tags)
	}
	found := false
	for _, w := range snap.Report().Warnings {
		if w.Path == filepath.Join(dir, "c.gif") {
			found = true
		}
	}
	if !found {
		t.Error("missing-metadata warning not in report")
	}
}

func TestRebuildSetEquality(t *testing.T) {
	lib, _ := fixtureLibrary(t)
	ctx := context.Background()

	first, err := lib.Rebuild(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := lib.Rebuild(ctx)
	if err != nil {
		t.Fatal(err)
	}

	ids := func(s *Snapshot) []string {
		var out []string
		for _, rec := range s.Records() {
			out = append(out, rec.ID)
		}
		sort.Strings(out)
		return out
	}
	a, b := ids(first), ids(second)
	if len(a) != len(b) {
		t.Fatalf("item counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("item sets differ at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestRebuildCorruptedMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.jpg"), "bytes")
	writeFile(t, filepath.Join(dir, "x.jpg.json"), `{"id": 1, "broken`)

	lib := New([]string{dir})
	snap, err := lib.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	rec, ok := snap.Get(ItemID(filepath.Join(dir, "x.jpg")))
	if !ok {
		t.Fatal("item with corrupted metadata must stay in the sequence")
	}
	if rec.SourcePlatform != "" || rec.Title != "" {
		t.Error("corrupted metadata should leave source fields empty")
	}

	report := snap.Report()
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(report.Errors))
	}
	if report.Errors[0].Stage != StageMetadata {
		t.Errorf("stage = %s, want %s", report.Errors[0].Stage, StageMetadata)
	}
}

func TestRebuildCorruptedOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.jpg"), "bytes")
	writeFile(t, filepath.Join(dir, "x.jpg.json"), `{"category": "pixiv", "id": 7, "tags": ["sky"]}`)
	writeFile(t, filepath.Join(dir, "x.jpg.booru.json"), `not json at all`)

	lib := New([]string{dir})
	snap, err := lib.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	rec, ok := snap.Get(ItemID(filepath.Join(dir, "x.jpg")))
	if !ok {
		t.Fatal("item missing")
	}
	if rec.HasOverlay {
		t.Error("malformed overlay must be treated as absent")
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "sky" {
		t.Errorf("source tags should survive a bad overlay: %v", rec.Tags)
	}

	report := snap.Report()
	if len(report.Errors) != 1 || report.Errors[0].Stage != StageOverlay {
		t.Errorf("expected one overlay-stage error, got %v", report.Errors)
	}
}

func TestRebuildNoReadableRoots(t *testing.T) {
	lib := New([]string{"/does/not/exist/anywhere"})
	if _, err := lib.Rebuild(context.Background()); !errors.Is(err, scanner.ErrNoReadableRoots) {
		t.Errorf("err = %v, want ErrNoReadableRoots", err)
	}
}

func TestRebuildCancellation(t *testing.T) {
	lib, _ := fixtureLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lib.Rebuild(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGetItem(t *testing.T) {
	lib, dir := fixtureLibrary(t)

	if _, err := lib.GetItem("anything"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("before rebuild err = %v, want ErrNoSnapshot", err)
	}

	if _, err := lib.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := lib.GetItem(ItemID(filepath.Join(dir, "a.jpg"))); err != nil {
		t.Errorf("GetItem = %v", err)
	}
	if _, err := lib.GetItem("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestApplyEditCreatesOverlayAndRefreshes(t *testing.T) {
	lib, dir := fixtureLibrary(t)
	if _, err := lib.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	id := ItemID(filepath.Join(dir, "b.png"))
	sensitive := true
	rec, err := lib.ApplyEdit(id, overlay.Delta{
		AddTags:      []string{"Urban "},
		SetSensitive: &sensitive,
	})
	if err != nil {
		t.Fatal(err)
	}

	if !rec.Sensitive {
		t.Error("edit should flip sensitivity")
	}
	hasUrban := false
	for _, tag := range rec.Tags {
		if tag == "urban" {
			hasUrban = true
		}
	}
	if !hasUrban {
		t.Errorf("added tag missing (and unnormalized?): %v", rec.Tags)
	}

	// The overlay file must exist on disk next to the media file.
	overlayPath := filepath.Join(dir, "b.png.booru.json")
	if _, err := os.Stat(overlayPath); err != nil {
		t.Fatalf("overlay file not written: %v", err)
	}

	// The published snapshot reflects the edit without a full rebuild.
	fresh, err := lib.GetItem(id)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh.Sensitive || !fresh.HasOverlay {
		t.Error("published snapshot does not reflect the edit")
	}

	// A full rebuild also converges on the overlay.
	snap, err := lib.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	rebuilt, _ := snap.Get(id)
	if !rebuilt.Sensitive || !rebuilt.HasOverlay {
		t.Error("rebuild does not reflect the persisted overlay")
	}
}

func TestRebuildLoadsAliases(t *testing.T) {
	lib, dir := fixtureLibrary(t)
	writeFile(t, filepath.Join(dir, "alias.json"), `[["cat", "kitty"]]`)

	if _, err := lib.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	aliases := lib.Aliases()
	if len(aliases["cat"]) != 1 || aliases["cat"][0] != "kitty" {
		t.Errorf("aliases[cat] = %v, want [kitty]", aliases["cat"])
	}
}

func TestApplyEditUnknownItem(t *testing.T) {
	lib, _ := fixtureLibrary(t)
	if _, err := lib.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := lib.ApplyEdit("nope", overlay.Delta{AddTags: []string{"x"}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
