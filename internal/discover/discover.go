// SPDX-License-Identifier: Apache-2.0

// Package discover expands command-line paths and "**" glob patterns into the
// artifact and sidecar files to validate.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Finder selects files under a directory by include and exclude patterns. Patterns
// use forward slashes and are matched against paths relative to the directory.
type Finder struct {
	Include []string
	Exclude []string
}

// Dir returns the regular files under root matching any include pattern and no
// exclude pattern, sorted.
func (f Finder) Dir(root string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range normalizePatterns(f.Include) {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, fmt.Errorf("discover: pattern %q: %w", pattern, err)
		}
		for _, rel := range matches {
			if seen[rel] || matchesAny(f.Exclude, rel) {
				continue
			}
			full := filepath.Join(root, filepath.FromSlash(rel))
			if !isFile(full) {
				continue
			}
			seen[rel] = true
			out = append(out, full)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Paths resolves command-line arguments. A directory expands through Dir, an existing
// file is kept as is, and anything else is treated as a glob. Order follows args;
// duplicates are dropped.
func (f Finder) Paths(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			files, err := f.Dir(arg)
			if err != nil {
				return nil, err
			}
			add(files...)
		case err == nil:
			add(arg)
		default:
			files, err := Glob(arg)
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("discover: no files match %s", arg)
			}
			add(files...)
		}
	}
	return out, nil
}

// Glob expands a single filesystem pattern, "**" included, to sorted regular files.
func Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Clean(filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("discover: pattern %q: %w", pattern, err)
	}
	out := matches[:0]
	for _, m := range matches {
		if isFile(m) {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Matches reports whether rel, relative to the directory Dir would scan, is selected:
// it matches an include pattern and no exclude pattern.
func (f Finder) Matches(rel string) bool {
	return matchesAny(f.Include, rel) && !matchesAny(f.Exclude, rel)
}

// Nested reports whether any include pattern can select files below the top level.
func (f Finder) Nested() bool {
	for _, p := range normalizePatterns(f.Include) {
		if strings.Contains(p, "/") || strings.Contains(p, "**") {
			return true
		}
	}
	return false
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}

func matchesAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range normalizePatterns(patterns) {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
