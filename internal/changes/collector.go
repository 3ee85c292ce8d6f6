package changes

import (
	"context"

	"github.com/roivaz/pr-summary/internal/logging"
)

const (
	fetchDepth   = 1
	contextLines = 0
	headRef      = "HEAD"
)

type Collector struct {
	repo       Repository
	baseBranch string
	log        logging.Logger
}

func NewCollector(repo Repository, baseBranch string, log logging.Logger) *Collector {
	if baseBranch == "" {
		baseBranch = "main"
	}
	return &Collector{repo: repo, baseBranch: baseBranch, log: log.WithName("changes")}
}

// Collect never fails. A failed fetch is logged and the diff is attempted
// against whatever ref is already present locally; a failed diff yields
// Placeholder.
func (c *Collector) Collect(ctx context.Context) Result {
	base := c.repo.RemoteRef(c.baseBranch)
	res := Result{BaseRef: base}

	if err := c.repo.FetchBranch(ctx, c.baseBranch, fetchDepth); err != nil {
		c.log.Error(err, "fetch mainline failed; continuing", "branch", c.baseBranch)
		res.FailureCategory = FailureCategoryFetch
		res.FetchError = err.Error()
	}

	diff, err := c.repo.Diff(ctx, base, headRef, contextLines)
	if err != nil {
		c.log.Error(err, "diff failed; using placeholder", "base", base)
		res.FailureCategory = FailureCategoryDiff
		res.DiffError = err.Error()
		res.Text = Placeholder
		return res
	}

	res.Text = diff
	files, err := ChangedFiles(diff)
	if err != nil {
		c.log.Debug("diff not parseable; file list skipped", "error", err.Error())
	}
	res.Files = files
	c.log.Debug("diff collected", "base", base, "chars", len(diff), "files", len(files))
	return res
}
