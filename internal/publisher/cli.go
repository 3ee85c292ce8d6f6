package publisher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/roivaz/pr-summary/internal/logging"
)

const tempFilePattern = "pr-summary-*.md"

// CommandRunner runs an external program and returns its stderr alongside
// any failure.
type CommandRunner func(ctx context.Context, name string, args ...string) (stderr string, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

type CLIConfig struct {
	GHPath  string // default: gh
	TempDir string // default: os.TempDir()
	Run     CommandRunner
	Logger  logging.Logger
}

// CLI posts through the GitHub CLI, which brings its own credentials
// (GH_TOKEN or GITHUB_TOKEN).
type CLI struct {
	cfg CLIConfig
	log logging.Logger
}

func NewCLI(cfg CLIConfig) *CLI {
	if cfg.GHPath == "" {
		cfg.GHPath = "gh"
	}
	if cfg.Run == nil {
		cfg.Run = ExecRunner
	}
	return &CLI{cfg: cfg, log: cfg.Logger.WithName("publisher.cli")}
}

// PostComment writes body to a fresh temp file and runs
// `gh pr comment <prID> --body-file <file>`. The file is left in place.
func (c *CLI) PostComment(ctx context.Context, prID, body string) error {
	path, err := writeBodyFile(c.cfg.TempDir, body)
	if err != nil {
		return err
	}
	c.log.Debug("summary written", "file", path)

	args := []string{"pr", "comment", prID, "--body-file", path}
	stderr, err := c.cfg.Run(ctx, c.cfg.GHPath, args...)
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		c.log.Debug("gh stderr", "output", trimmed)
	}
	if err != nil {
		c.log.Error(err, "gh command failed", "args", args)
		if trimmed := strings.TrimSpace(stderr); trimmed != "" {
			return fmt.Errorf("%s %s: %w: %s", c.cfg.GHPath, strings.Join(args, " "), err, trimmed)
		}
		return fmt.Errorf("%s %s: %w", c.cfg.GHPath, strings.Join(args, " "), err)
	}
	c.log.Info("comment posted", "pr", prID)
	return nil
}

func writeBodyFile(dir, body string) (string, error) {
	f, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return "", fmt.Errorf("create summary file: %w", err)
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write summary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close summary file: %w", err)
	}
	return f.Name(), nil
}
