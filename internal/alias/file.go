package alias

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PathForRoot returns the alias file path for one library root.
func PathForRoot(root string) string {
	return filepath.Join(root, FileName)
}

// LoadGroupsFromPath reads and normalizes an alias file. The file must be a
// JSON array of string arrays; anything else is rejected so a typo does not
// silently disable aliases.
func LoadGroupsFromPath(path string) (Groups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file %s: %w", path, err)
	}

	var groups Groups
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	return NormalizeGroups(groups), nil
}

// LoadGroupsFromRoot reads the alias file under one root; a missing file
// yields empty groups.
func LoadGroupsFromRoot(root string) (Groups, error) {
	path := PathForRoot(root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadGroupsFromPath(path)
}

// SaveGroupsToPath writes normalized groups as pretty-printed JSON.
func SaveGroupsToPath(path string, groups Groups) error {
	normalized := NormalizeGroups(groups)
	if normalized == nil {
		normalized = Groups{}
	}

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alias groups: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write alias file %s: %w", path, err)
	}
	return nil
}

// SaveGroupsToRoot writes the alias file under one root.
func SaveGroupsToRoot(root string, groups Groups) error {
	return SaveGroupsToPath(PathForRoot(root), groups)
}

// LoadMapFromRoots merges the alias maps of every root. Malformed files are
// reported as warnings and skipped.
func LoadMapFromRoots(roots []string) (Map, []Warning) {
	merged := make(Map)
	var warnings []Warning

	for _, root := range roots {
		path := PathForRoot(root)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		groups, err := LoadGroupsFromPath(path)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Message: err.Error()})
			continue
		}

		for term, aliases := range MapFromGroups(groups) {
			for _, a := range aliases {
				if !contains(merged[term], a) {
					merged[term] = append(merged[term], a)
				}
			}
		}
	}

	return merged, warnings
}
