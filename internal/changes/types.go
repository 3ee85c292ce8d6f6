package changes

import "context"

// Placeholder replaces the diff whenever it cannot be computed.
const Placeholder = "No diff available."

type FailureCategory string

const (
	FailureCategoryNone  FailureCategory = ""
	FailureCategoryFetch FailureCategory = "fetch"
	FailureCategoryDiff  FailureCategory = "diff"
)

// Result is what the pipeline gets from the collector. Text is always usable:
// either the diff or Placeholder.
type Result struct {
	Text            string
	BaseRef         string
	Files           []string
	FailureCategory FailureCategory
	FetchError      string
	DiffError       string
}

// Available reports whether Text holds a real diff.
func (r Result) Available() bool {
	return r.DiffError == ""
}

// Repository is the subset of git the collector needs.
type Repository interface {
	FetchBranch(ctx context.Context, branch string, depth int) error
	Diff(ctx context.Context, base, head string, contextLines int) (string, error)
	RemoteRef(branch string) string
}
