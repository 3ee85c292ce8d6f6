package publisher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/roivaz/pr-summary/internal/logging"
)

// NewGitHubClient returns an API client, authenticated when token is set.
// Requests are bounded only by the caller's context.
func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(context.Background(), ts))
}

// API posts through the GitHub REST API. Pull requests share the issue
// comment endpoint.
type API struct {
	client *github.Client
	owner  string
	repo   string
	log    logging.Logger
}

func NewAPI(client *github.Client, owner, repo string, log logging.Logger) *API {
	return &API{client: client, owner: owner, repo: repo, log: log.WithName("publisher.api")}
}

func (a *API) PostComment(ctx context.Context, prID, body string) error {
	number, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(prID), "#"))
	if err != nil || number <= 0 {
		return fmt.Errorf("pull request %q is not a number", prID)
	}
	comment, _, err := a.client.Issues.CreateComment(ctx, a.owner, a.repo, number, &github.IssueComment{Body: github.String(body)})
	if err != nil {
		return fmt.Errorf("create comment on %s/%s#%d: %w", a.owner, a.repo, number, err)
	}
	a.log.Info("comment posted", "pr", number, "url", comment.GetHTMLURL())
	return nil
}

// ResolveRepository returns owner and name from an "owner/name" slug, or,
// when slug is empty, from the remote URL returned by remoteURL.
func ResolveRepository(ctx context.Context, slug string, remoteURL func(context.Context) (string, error)) (string, string, error) {
	if slug = strings.TrimSpace(slug); slug != "" {
		owner, name, ok := strings.Cut(slug, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return "", "", fmt.Errorf("invalid repository %q (want owner/name)", slug)
		}
		return owner, name, nil
	}
	if remoteURL == nil {
		return "", "", fmt.Errorf("repository not configured")
	}
	raw, err := remoteURL(ctx)
	if err != nil {
		return "", "", fmt.Errorf("read remote url: %w", err)
	}
	info, err := vcsurl.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse remote url %q: %w", raw, err)
	}
	if info.Username == "" || info.Name == "" {
		return "", "", fmt.Errorf("remote url %q does not name a repository", raw)
	}
	return info.Username, info.Name, nil
}
