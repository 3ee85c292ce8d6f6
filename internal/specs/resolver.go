// Package specs locates the specification document that gives the
// summarizer its context.
package specs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Placeholder stands in for the specification when no file matches.
const Placeholder = "No spec files found."

// Document is the resolved specification. Path is empty when nothing matched.
type Document struct {
	Path string
	Text string
}

// Found reports whether Text came from a file.
func (d Document) Found() bool { return d.Path != "" }

// Resolve returns the lexicographically last file under dir matching any of
// patterns. Patterns use doublestar syntax relative to dir. A missing dir, a
// dir that is a plain file, or an empty match set yields Placeholder; a read
// failure is returned.
func Resolve(dir string, patterns []string) (Document, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{Text: Placeholder}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("stat specs dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return Document{Text: Placeholder}, nil
	}

	matches, err := match(os.DirFS(dir), patterns)
	if err != nil {
		return Document{}, err
	}
	if len(matches) == 0 {
		return Document{Text: Placeholder}, nil
	}

	path := filepath.Join(dir, filepath.FromSlash(matches[len(matches)-1]))
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read spec %s: %w", path, err)
	}
	return Document{Path: path, Text: string(data)}, nil
}

// match returns the sorted, de-duplicated set of regular files matching any
// pattern.
func match(fsys fs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid spec pattern %q", pattern)
		}
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, f := range found {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out, nil
}
