package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanPairsTriples(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "img")
	writeFile(t, filepath.Join(root, "a.jpg.json"), `{"category": "danbooru"}`)
	writeFile(t, filepath.Join(root, "a.jpg.booru.json"), `{"notes": "n"}`)
	writeFile(t, filepath.Join(root, "sub", "b.png"), "img")
	writeFile(t, filepath.Join(root, "sub", "b.png.json"), `{}`)

	result, err := Scan(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Triples) != 2 {
		t.Fatalf("Triples = %d, want 2", len(result.Triples))
	}

	a := result.Triples[0]
	if filepath.Base(a.MediaPath) != "a.jpg" {
		t.Errorf("first triple = %s, want a.jpg (discovery order)", a.MediaPath)
	}
	if a.MetaPath != a.MediaPath+".json" {
		t.Errorf("MetaPath = %q", a.MetaPath)
	}
	if a.OverlayPath != a.MediaPath+".booru.json" {
		t.Errorf("OverlayPath = %q", a.OverlayPath)
	}
	if a.Extension != ".jpg" {
		t.Errorf("Extension = %q", a.Extension)
	}
	if a.Size != int64(len("img")) {
		t.Errorf("Size = %d", a.Size)
	}

	b := result.Triples[1]
	if b.OverlayPath != "" {
		t.Errorf("b OverlayPath = %q, want empty", b.OverlayPath)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
}

func TestScanMediaWithoutMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lonely.png"), "img")

	result, err := Scan(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Triples) != 1 {
		t.Fatalf("Triples = %d, want 1 (never silently dropped)", len(result.Triples))
	}
	if result.Triples[0].MetaPath != "" {
		t.Errorf("MetaPath = %q, want empty", result.Triples[0].MetaPath)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "no source metadata") {
		t.Errorf("Warnings = %v, want missing-metadata warning", result.Warnings)
	}
}

func TestScanMetadataWithoutMedia(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gone.jpg.json"), `{}`)

	result, err := Scan(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Triples) != 0 {
		t.Errorf("Triples = %v, want none", result.Triples)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "no media file") {
		t.Errorf("Warnings = %v, want orphan-metadata warning", result.Warnings)
	}
}

func TestScanSkipsHiddenAndAliasAndNonMedia(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden", "x.jpg"), "img")
	writeFile(t, filepath.Join(root, ".thumb.jpg"), "img")
	writeFile(t, filepath.Join(root, "alias.json"), `[["a","b"]]`)
	writeFile(t, filepath.Join(root, "readme.txt"), "text")

	result, err := Scan(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Triples) != 0 {
		t.Errorf("Triples = %v, want none", result.Triples)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
}

func TestScanHiddenRootIsWalked(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".booru")
	writeFile(t, filepath.Join(root, "a.jpg"), "img")
	writeFile(t, filepath.Join(root, "a.jpg.json"), `{}`)
	writeFile(t, filepath.Join(root, ".hidden", "x.jpg"), "img")

	result, err := Scan(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Triples) != 1 {
		t.Fatalf("Triples = %d, want 1 (dot-named root must still be walked)", len(result.Triples))
	}
	if filepath.Base(result.Triples[0].MediaPath) != "a.jpg" {
		t.Errorf("MediaPath = %s, want a.jpg", result.Triples[0].MediaPath)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
}

func TestScanMissingRootIsWarning(t *testing.T) {
	good := t.TempDir()
	writeFile(t, filepath.Join(good, "a.jpg"), "img")
	writeFile(t, filepath.Join(good, "a.jpg.json"), `{}`)

	result, err := Scan(context.Background(), []string{good, filepath.Join(good, "does-not-exist")})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Triples) != 1 {
		t.Errorf("Triples = %d, want 1", len(result.Triples))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "not a readable directory") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want unreadable-root warning", result.Warnings)
	}
}

func TestScanNoReadableRootsIsFatal(t *testing.T) {
	_, err := Scan(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, ErrNoReadableRoots) {
		t.Errorf("err = %v, want ErrNoReadableRoots", err)
	}
}

func TestScanCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "img")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, []string{root}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
