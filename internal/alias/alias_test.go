package alias

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNormalizeTerms(t *testing.T) {
	got := NormalizeTerms([]string{"  YuruCamp ", "yurucamp", "", "Other"})
	want := []string{"yurucamp", "other"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTerms = %v, want %v", got, want)
	}
}

func TestNormalizeGroupsMergesConnected(t *testing.T) {
	got := NormalizeGroups(Groups{{"a", "b"}, {"b", "c"}, {"x", "y"}})
	want := Groups{{"a", "b", "c"}, {"x", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeGroups = %v, want %v", got, want)
	}
}

func TestNormalizeGroupsDropsSingletons(t *testing.T) {
	got := NormalizeGroups(Groups{{"only"}, {"a", "a", " A "}})
	if got != nil {
		t.Errorf("NormalizeGroups = %v, want nil", got)
	}
}

func TestMapFromGroupsBidirectional(t *testing.T) {
	m := MapFromGroups(Groups{{"one", "uno", "ein"}})

	for _, term := range []string{"one", "uno", "ein"} {
		if len(m[term]) != 2 {
			t.Errorf("map[%q] = %v, want 2 aliases", term, m[term])
		}
	}
}

func TestExpandTerms(t *testing.T) {
	m := MapFromGroups(Groups{{"a", "b"}, {"b", "c"}})

	got := ExpandTerms([]string{"a"}, m)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandTerms = %v, want %v", got, want)
	}

	if got := ExpandTerms(nil, m); got != nil {
		t.Errorf("ExpandTerms(nil) = %v, want nil", got)
	}
}

func TestMergeTerms(t *testing.T) {
	groups := Groups{{"a", "b"}, {"x", "y"}}

	merged, changed := MergeTerms(groups, []string{"b", "x", "z"})
	if !changed {
		t.Fatal("MergeTerms reported no change")
	}
	want := Groups{{"a", "b", "x", "y", "z"}}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("MergeTerms = %v, want %v", merged, want)
	}

	// A single term cannot form a group.
	same, changed := MergeTerms(merged, []string{"solo"})
	if changed {
		t.Error("MergeTerms single term reported change")
	}
	if !reflect.DeepEqual(same, merged) {
		t.Errorf("MergeTerms single term altered groups: %v", same)
	}
}

func TestRemoveTerms(t *testing.T) {
	groups := Groups{{"a", "b", "c"}}

	remaining, changed := RemoveTerms(groups, []string{"a", "b"})
	if !changed {
		t.Fatal("RemoveTerms reported no change")
	}
	if remaining != nil {
		t.Errorf("RemoveTerms = %v, want nil (group shrank below 2)", remaining)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	root := t.TempDir()

	in := Groups{{"b", "a"}, {"z", "y"}}
	if err := SaveGroupsToRoot(root, in); err != nil {
		t.Fatalf("SaveGroupsToRoot: %v", err)
	}

	out, err := LoadGroupsFromRoot(root)
	if err != nil {
		t.Fatalf("LoadGroupsFromRoot: %v", err)
	}
	want := Groups{{"a", "b"}, {"y", "z"}}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("round trip = %v, want %v", out, want)
	}
}

func TestLoadGroupsFromRootMissing(t *testing.T) {
	groups, err := LoadGroupsFromRoot(t.TempDir())
	if err != nil {
		t.Fatalf("missing alias file: unexpected error %v", err)
	}
	if groups != nil {
		t.Errorf("missing alias file: groups = %v, want nil", groups)
	}
}

func TestLoadMapFromRootsCollectsWarnings(t *testing.T) {
	good := t.TempDir()
	bad := t.TempDir()

	if err := SaveGroupsToRoot(good, Groups{{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, FileName), []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, warnings := LoadMapFromRoots([]string{good, bad})
	if len(m["a"]) != 1 || m["a"][0] != "b" {
		t.Errorf("map = %v, want a->b", m)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", warnings)
	}
}
