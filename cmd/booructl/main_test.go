package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), "jpeg")
	writeFile(t, filepath.Join(dir, "a.jpg.json"),
		`{"category": "danbooru", "id": 9, "tag_string": "sky cat"}`)
	writeFile(t, filepath.Join(dir, "b.png"), "png")
	writeFile(t, filepath.Join(dir, "b.png.json"),
		`{"category": "pixiv", "id": 10, "tags": ["dog"]}`)
	return dir
}

// runCommand executes the CLI with fresh flag state and captured stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootFlags.roots = nil
	rootFlags.asJSON = false

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	runErr := cmd.Execute()

	w.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatal(err)
	}
	return buf.String(), runErr
}

func TestSearchCommand(t *testing.T) {
	dir := fixtureRoot(t)

	out, err := runCommand(t, "search", "--root", dir, "--tag", "cat")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a.jpg") || strings.Contains(out, "b.png") {
		t.Errorf("unexpected search output:\n%s", out)
	}
	if !strings.Contains(out, "1 of 1 item(s)") {
		t.Errorf("missing summary line:\n%s", out)
	}
}

func TestSearchRequiresRoot(t *testing.T) {
	if _, err := runCommand(t, "search"); err == nil {
		t.Error("search without --root must fail")
	}
}

func TestInfoCommand(t *testing.T) {
	dir := fixtureRoot(t)

	out, err := runCommand(t, "info", filepath.Join(dir, "a.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"danbooru", "sky cat", "Sensitive: false"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestEditCommand(t *testing.T) {
	dir := fixtureRoot(t)
	media := filepath.Join(dir, "a.jpg")

	out, err := runCommand(t, "edit", media, "--add-tag", "favorite", "--remove-tag", "cat", "--sensitive", "true")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "favorite") || strings.Contains(out, "cat ") {
		t.Errorf("edit output tags wrong:\n%s", out)
	}
	if !strings.Contains(out, "Sensitive: true") {
		t.Errorf("edit output sensitivity wrong:\n%s", out)
	}

	if _, err := os.Stat(media + ".booru.json"); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}

func TestEditRejectsEmptyDelta(t *testing.T) {
	dir := fixtureRoot(t)
	if _, err := runCommand(t, "edit", filepath.Join(dir, "a.jpg")); err == nil {
		t.Error("empty edit must fail")
	}
}

func TestAliasRoundTrip(t *testing.T) {
	dir := fixtureRoot(t)

	if _, err := runCommand(t, "alias", "add", "cat", "kitty", "--root", dir); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "alias", "list", "--root", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cat = kitty") {
		t.Errorf("alias list output:\n%s", out)
	}

	// Searching for the alias now finds the tagged item.
	out, err = runCommand(t, "search", "--root", dir, "--tag", "kitty")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a.jpg") {
		t.Errorf("alias-expanded search output:\n%s", out)
	}

	if _, err := runCommand(t, "alias", "remove", "kitty", "--root", dir); err != nil {
		t.Fatal(err)
	}
	out, _ = runCommand(t, "alias", "list", "--root", dir)
	if strings.Contains(out, "kitty") {
		t.Errorf("alias survived removal:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "booructl") {
		t.Errorf("version output:\n%s", out)
	}
}
