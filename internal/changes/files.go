package changes

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ChangedFiles lists the paths touched by a unified diff, in diff order.
// Deleted files are reported under their old name.
func ChangedFiles(diff string) ([]string, error) {
	if strings.TrimSpace(diff) == "" {
		return nil, nil
	}
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		name := f.NewName
		if f.IsDelete || name == "" {
			name = f.OldName
		}
		paths = append(paths, name)
	}
	return paths, nil
}
