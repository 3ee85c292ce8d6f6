package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type RepoConfig struct {
	Path    string
	Remote  string        // default: origin
	Timeout time.Duration // per git invocation; zero means no limit
}

type Repo struct {
	cfg    RepoConfig
	runner Runner
}

func New(cfg RepoConfig) *Repo {
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.Path == "" {
		cfg.Path = "."
	}
	return &Repo{cfg: cfg, runner: Runner{Timeout: cfg.Timeout}}
}

type Runner struct {
	Timeout time.Duration
}

func (r Runner) Git(ctx context.Context, dir string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) && r.Timeout > 0 {
				return "", formatGitTimeoutError(args, r.Timeout, stderr.String())
			}
			return "", formatGitContextError(args, ctxErr, stderr.String())
		}
		return "", formatGitError(args, err, stderr.String())
	}
	return stdout.String(), nil
}

func formatGitError(args []string, cause error, stderr string) error {
	cmd := strings.Join(args, " ")
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("git %s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("git %s: %w", cmd, cause)
}

func formatGitTimeoutError(args []string, timeout time.Duration, stderr string) error {
	return formatGitError(args, fmt.Errorf("command timed out after %s", timeout), stderr)
}

func formatGitContextError(args []string, cause error, stderr string) error {
	if cause == nil {
		cause = errors.New("context canceled")
	}
	return formatGitError(args, cause, stderr)
}

// Run is a helper to execute arbitrary git subcommands in the repo path.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path, args...)
}

// RemoteRef is the remote-tracking ref a branch is fetched into.
func (r *Repo) RemoteRef(branch string) string {
	return fmt.Sprintf("%s/%s", r.cfg.Remote, branch)
}

// FetchBranch updates the remote-tracking ref of branch. depth > 0 makes it
// a shallow fetch.
func (r *Repo) FetchBranch(ctx context.Context, branch string, depth int) error {
	args := []string{"fetch", "--no-tags"}
	if depth > 0 {
		args = append(args, fmt.Sprintf("--depth=%d", depth))
	}
	refspec := fmt.Sprintf("%s:refs/remotes/%s", branch, r.RemoteRef(branch))
	args = append(args, r.cfg.Remote, refspec)
	_, err := r.runner.Git(ctx, r.cfg.Path, args...)
	return err
}

// Diff returns the unified diff of head against its merge base with base,
// with the given number of context lines.
func (r *Repo) Diff(ctx context.Context, base, head string, contextLines int) (string, error) {
	rangeSpec := fmt.Sprintf("%s...%s", base, head)
	return r.runner.Git(ctx, r.cfg.Path, "diff", "--no-color", "--no-ext-diff", fmt.Sprintf("--unified=%d", contextLines), rangeSpec)
}

// RemoteURL returns the fetch URL of the configured remote.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "remote", "get-url", r.cfg.Remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
