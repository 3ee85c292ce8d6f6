package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roivaz/pr-summary/internal/changes"
	"github.com/roivaz/pr-summary/internal/config"
	"github.com/roivaz/pr-summary/internal/gitrepo"
	"github.com/roivaz/pr-summary/internal/logging"
	"github.com/roivaz/pr-summary/internal/prompt"
	"github.com/roivaz/pr-summary/internal/publisher"
	"github.com/roivaz/pr-summary/internal/specs"
	"github.com/roivaz/pr-summary/internal/summarizer"
	"github.com/roivaz/pr-summary/internal/workflow"
)

// errReported marks failures whose message was already written to stderr.
var errReported = errors.New("reported")

// factories builds the external collaborators. Tests swap them for fakes.
type factories struct {
	summarizer func(summarizer.Config) (summarizer.Summarizer, error)
	publisher  func(ctx context.Context, s config.Settings, repo *gitrepo.Repo, log logging.Logger) (publisher.Publisher, error)
	diff       func(repo *gitrepo.Repo, s config.Settings, log logging.Logger) workflow.DiffCollector
}

func defaultFactories() factories {
	return factories{
		summarizer: func(cfg summarizer.Config) (summarizer.Summarizer, error) {
			return summarizer.NewOpenAI(cfg)
		},
		publisher: newPublisher,
		diff: func(repo *gitrepo.Repo, s config.Settings, log logging.Logger) workflow.DiffCollector {
			return changes.NewCollector(repo, s.BaseBranch, log)
		},
	}
}

func newPublisher(ctx context.Context, s config.Settings, repo *gitrepo.Repo, log logging.Logger) (publisher.Publisher, error) {
	switch s.Publisher {
	case config.PublisherAPI:
		owner, name, err := publisher.ResolveRepository(ctx, s.GitHubRepository, repo.RemoteURL)
		if err != nil {
			return nil, err
		}
		return publisher.NewAPI(publisher.NewGitHubClient(s.GitHubToken), owner, name, log), nil
	default:
		return publisher.NewCLI(publisher.CLIConfig{GHPath: s.GHPath, Logger: log}), nil
	}
}

func newRootCmd(stdout, stderr io.Writer, f factories) *cobra.Command {
	root := &cobra.Command{
		Use:           "pr-summary",
		Short:         "Summarize a pull request against its spec and post the result as a comment",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.PRNumber() == "" {
				fmt.Fprintln(stderr, "Missing PR_NUMBER")
				return errReported
			}
			s, err := config.Load()
			if err != nil {
				return err
			}
			return summarize(cmd.Context(), s, stdout, f)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("specs-dir", "specs", "directory searched for the specification file")
	flags.String("spec-patterns", config.DefaultSpecPatterns, "comma separated glob patterns for spec files")
	flags.Int("max-diff-chars", config.DefaultMaxDiffChars, "maximum diff characters sent to the model")
	flags.String("repo-path", ".", "path to the git working tree")
	flags.String("remote", "origin", "git remote holding the base branch")
	flags.String("base-branch", "main", "branch the pull request is compared against")
	flags.String("publisher", config.PublisherGH, "comment transport: gh or api")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("dry-run", false, "print the summary without posting it")

	config.Init(root)
	return root
}

func summarize(ctx context.Context, s config.Settings, stdout io.Writer, f factories) error {
	base, err := logging.NewLogr(s.LogLevel)
	if err != nil {
		base = logging.DefaultLogger()
		base.Info("falling back to info logging", "error", err.Error())
	}
	log := logging.New(base).WithValues("pr", s.PRNumber)

	repo := gitrepo.New(gitrepo.RepoConfig{Path: s.RepoPath, Remote: s.Remote, Timeout: s.GitTimeout})

	model, err := f.summarizer(summarizer.Config{
		Model:       s.SummaryModel,
		APIKey:      s.OpenAIAPIKey,
		BaseURL:     s.OpenAIBaseURL,
		System:      prompt.SystemInstruction,
		CallTimeout: s.LLMCallTimeout,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	var pub publisher.Publisher
	if !s.DryRun {
		if pub, err = f.publisher(ctx, s, repo, log); err != nil {
			return fmt.Errorf("configure publisher: %w", err)
		}
	}

	w := &workflow.Workflow{
		Settings:   s,
		Specs:      specs.Resolve,
		Diff:       f.diff(repo, s, log),
		Summarizer: model,
		Publisher:  pub,
		Out:        stdout,
		Log:        log,
	}
	if base.V(1).Enabled() {
		w.EstimateTokens = func(text string) int {
			return prompt.EstimateTokens(s.SummaryModel, text)
		}
	}
	if err := w.Run(ctx); err != nil {
		log.Error(err, "run failed", "state", string(w.State()))
		return err
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, f factories) int {
	root := newRootCmd(stdout, stderr, f)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "pr-summary: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultFactories())
	cancel()
	os.Exit(code)
}
