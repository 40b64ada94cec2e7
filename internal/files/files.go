// ABOUTME: Expands file arguments (paths and ** globs) into upload candidates.
// ABOUTME: Flags files over the upload limit so they are rejected before any request.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/2389-research/asksee/internal/api"
)

// Candidate is a regular file matched by a pattern.
type Candidate struct {
	Path     string
	Size     int64
	TooLarge bool
}

// Expand resolves each pattern to regular files. Plain paths are kept as-is;
// patterns with glob metacharacters are matched with doublestar. Results are
// de-duplicated and sorted within each pattern, in pattern order.
func Expand(patterns []string) ([]Candidate, error) {
	seen := make(map[string]bool)
	var out []Candidate

	for _, pattern := range patterns {
		var matches []string
		if hasMeta(pattern) {
			if !doublestar.ValidatePathPattern(pattern) {
				return nil, fmt.Errorf("invalid pattern %q", pattern)
			}
			m, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
			}
			if len(m) == 0 {
				return nil, fmt.Errorf("no files match %q", pattern)
			}
			sort.Strings(m)
			matches = m
		} else {
			matches = []string{pattern}
		}

		for _, path := range matches {
			clean := filepath.Clean(path)
			if seen[clean] {
				continue
			}
			info, err := os.Stat(clean)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", clean, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory (use a glob such as %s)", clean, filepath.Join(clean, "**", "*"))
			}
			seen[clean] = true
			out = append(out, Candidate{
				Path:     clean,
				Size:     info.Size(),
				TooLarge: api.CheckUploadSize(info.Size()) != nil,
			})
		}
	}
	return out, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
