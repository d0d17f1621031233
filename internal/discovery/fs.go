// Package discovery resolves which suite files a run should load.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSuites indicates that no suite files were found during discovery.
var ErrNoSuites = errors.New("no suites discovered")

var suiteSuffixes = []string{"_test.yaml", "_test.yml"}

// IsSuiteFile reports whether name follows the suite naming convention.
func IsSuiteFile(name string) bool {
	for _, suffix := range suiteSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return true
		}
	}
	return false
}

// Suites returns suite file paths relative to root where possible.
//
// With explicit paths, each one is resolved against root, must name an existing
// file and is kept in the order given; repeats are dropped. Otherwise the suite
// files directly inside root are returned in lexical order. Subdirectories are not
// searched.
func Suites(root string, explicit []string) ([]string, error) {
	var paths []string
	if len(explicit) > 0 {
		seen := make(map[string]bool, len(explicit))
		for _, input := range explicit {
			path := input
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			info, err := os.Stat(path)
			switch {
			case err != nil:
				return nil, fmt.Errorf("suite file %q: %w", input, err)
			case info.IsDir():
				return nil, fmt.Errorf("suite file %q is a directory", input)
			}
			rel := relativeTo(root, path)
			if !seen[rel] {
				seen[rel] = true
				paths = append(paths, rel)
			}
		}
		return paths, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read test path %q: %w", root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsSuiteFile(entry.Name()) {
			continue
		}
		paths = append(paths, entry.Name())
	}
	if len(paths) == 0 {
		return nil, ErrNoSuites
	}
	sort.Strings(paths)
	return paths, nil
}

// relativeTo keeps paths inside root short for display; anything outside stays as given.
func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
