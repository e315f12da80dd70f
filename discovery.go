// FILE: itcw/config/discovery.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultPatterns are the file patterns searched when none are configured.
var DefaultPatterns = []string{"*.env", "*.ini"}

// ExtendedPatterns adds the structured formats to DefaultPatterns.
var ExtendedPatterns = []string{"*.env", "*.ini", "*.toml", "*.yaml", "*.yml"}

// discoverFiles returns the regular files in dir matching patterns. Files are
// grouped by pattern in registration order and sorted by name within a
// pattern. A file matched by several patterns is listed once.
func discoverFiles(dir string, patterns []string) ([]string, error) {
	var found []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}

		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("search %s for %q: %w", dir, pattern, err)
		}
		sort.Strings(matches)

		for _, path := range matches {
			if seen[path] {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if detectFileFormat(path) == "" {
				continue
			}
			seen[path] = true
			found = append(found, path)
		}
	}

	return found, nil
}

// matchesAny reports whether the base name of path matches one of patterns.
func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
