package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/pr-summary/internal/changes"
	"github.com/roivaz/pr-summary/internal/config"
	"github.com/roivaz/pr-summary/internal/logging"
	"github.com/roivaz/pr-summary/internal/prompt"
	"github.com/roivaz/pr-summary/internal/publisher"
	"github.com/roivaz/pr-summary/internal/specs"
	"github.com/roivaz/pr-summary/internal/summarizer"
)

type failingRepo struct{ fetchCalls, diffCalls int }

func (r *failingRepo) FetchBranch(context.Context, string, int) error {
	r.fetchCalls++
	return errors.New("fatal: 'origin' does not appear to be a git repository")
}

func (r *failingRepo) Diff(context.Context, string, string, int) (string, error) {
	r.diffCalls++
	return "", errors.New("exit status 128")
}

func (r *failingRepo) RemoteRef(branch string) string { return "origin/" + branch }

type staticDiff struct {
	text  string
	calls int
}

func (s *staticDiff) Collect(context.Context) changes.Result {
	s.calls++
	return changes.Result{Text: s.text}
}

func settings(pr string) config.Settings {
	return config.Settings{
		PRNumber:     pr,
		SpecsDir:     "specs",
		SpecPatterns: []string{"*.md", "*.yaml", "*.yml"},
		MaxDiffChars: prompt.DefaultMaxDiffChars,
	}
}

func TestRun_EndToEndWithCLIPublisher(t *testing.T) {
	s := settings("42")
	s.SpecsDir = filepath.Join(t.TempDir(), "specs")

	var ghArgs []string
	var fileBody string
	cli := publisher.NewCLI(publisher.CLIConfig{
		TempDir: t.TempDir(),
		Logger:  logging.Discard(),
		Run: func(_ context.Context, name string, args ...string) (string, error) {
			ghArgs = append([]string{name}, args...)
			data, err := os.ReadFile(args[len(args)-1])
			require.NoError(t, err)
			fileBody = string(data)
			return "", nil
		},
	})
	repo := &failingRepo{}
	model := &summarizer.Static{Text: "Summary text."}
	var out bytes.Buffer

	w := &Workflow{
		Settings:   s,
		Specs:      specs.Resolve,
		Diff:       changes.NewCollector(repo, "main", logging.Discard()),
		Summarizer: model,
		Publisher:  cli,
		Out:        &out,
		Log:        logging.Discard(),
	}
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, StateDone, w.State())
	assert.Equal(t, "Summary text.", fileBody)
	require.Len(t, ghArgs, 6)
	assert.Equal(t, []string{"gh", "pr", "comment", "42", "--body-file"}, ghArgs[:5])
	assert.Equal(t, "Summary text.\n", out.String())

	require.Len(t, model.Prompts, 1)
	assert.Contains(t, model.Prompts[0], "## Specification\n"+specs.Placeholder+"\n")
	assert.Contains(t, model.Prompts[0], "## Diff\n"+changes.Placeholder+"\n")
	assert.Equal(t, 1, repo.fetchCalls)
	assert.Equal(t, 1, repo.diffCalls)
}

func TestRun_MissingPRNumberDoesNoWork(t *testing.T) {
	specCalls := 0
	diff := &staticDiff{}
	model := &summarizer.Static{Text: "x"}
	pub := &publisher.Memory{}
	var out bytes.Buffer

	w := &Workflow{
		Settings: settings(""),
		Specs: func(string, []string) (specs.Document, error) {
			specCalls++
			return specs.Document{}, nil
		},
		Diff:       diff,
		Summarizer: model,
		Publisher:  pub,
		Out:        &out,
		Log:        logging.Discard(),
	}

	err := w.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingPRNumber)
	assert.Equal(t, StateFailed, w.State())
	assert.Zero(t, specCalls)
	assert.Zero(t, diff.calls)
	assert.Empty(t, model.Prompts)
	assert.Empty(t, pub.Comments)
	assert.Empty(t, out.String())
}

func TestRun_TrimsSummaryAndTruncatesDiff(t *testing.T) {
	longDiff := strings.Repeat("d", prompt.DefaultMaxDiffChars+100)
	model := &summarizer.Static{Text: "  Hello world  "}
	pub := &publisher.Memory{}
	var out bytes.Buffer

	w := &Workflow{
		Settings: settings("9"),
		Specs: func(string, []string) (specs.Document, error) {
			return specs.Document{Path: "specs/a.md", Text: "S"}, nil
		},
		Diff:       &staticDiff{text: longDiff},
		Summarizer: model,
		Publisher:  pub,
		Out:        &out,
		Log:        logging.Discard(),
	}
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, []publisher.Comment{{PR: "9", Body: "Hello world"}}, pub.Comments)
	assert.Equal(t, "Hello world\n", out.String())
	require.Len(t, model.Prompts, 1)
	assert.Contains(t, model.Prompts[0], strings.Repeat("d", prompt.DefaultMaxDiffChars))
	assert.NotContains(t, model.Prompts[0], strings.Repeat("d", prompt.DefaultMaxDiffChars+1))
}

func TestRun_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		specErr  error
		modelErr error
		postErr  error
	}{
		{name: "spec unreadable", specErr: os.ErrPermission},
		{name: "completion failure", modelErr: errors.New("401 unauthorized")},
		{name: "posting failure", postErr: errors.New("gh: exit status 1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &summarizer.Static{Text: "summary", Err: tt.modelErr}
			pub := &publisher.Memory{Err: tt.postErr}
			var out bytes.Buffer
			w := &Workflow{
				Settings: settings("1"),
				Specs: func(string, []string) (specs.Document, error) {
					return specs.Document{}, tt.specErr
				},
				Diff:       &staticDiff{text: "diff"},
				Summarizer: model,
				Publisher:  pub,
				Out:        &out,
				Log:        logging.Discard(),
			}

			err := w.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, StateFailed, w.State())
			assert.Empty(t, pub.Comments, "no partial summary is posted")
			assert.Empty(t, out.String())
			for _, want := range []error{tt.specErr, tt.modelErr, tt.postErr} {
				if want != nil {
					assert.ErrorIs(t, err, want)
				}
			}
		})
	}
}

func TestRun_DryRunSkipsPublisher(t *testing.T) {
	s := settings("5")
	s.DryRun = true
	pub := &publisher.Memory{}
	var out bytes.Buffer
	estimated := 0

	w := &Workflow{
		Settings: s,
		Specs: func(string, []string) (specs.Document, error) {
			return specs.Document{Text: specs.Placeholder}, nil
		},
		Diff:           &staticDiff{text: "diff"},
		Summarizer:     &summarizer.Static{Text: "dry"},
		Publisher:      pub,
		Out:            &out,
		Log:            logging.Discard(),
		EstimateTokens: func(string) int { estimated++; return 1 },
	}
	require.NoError(t, w.Run(context.Background()))

	assert.Empty(t, pub.Comments)
	assert.Equal(t, "dry\n", out.String())
	assert.Equal(t, StateDone, w.State())
	assert.Equal(t, 1, estimated)
}

func TestRun_RepeatedRunsKeepLoggerName(t *testing.T) {
	var prefixes []string
	base := funcr.New(func(prefix, _ string) {
		prefixes = append(prefixes, prefix)
	}, funcr.Options{})

	w := &Workflow{
		Settings: settings("3"),
		Specs: func(string, []string) (specs.Document, error) {
			return specs.Document{Text: specs.Placeholder}, nil
		},
		Diff:       &staticDiff{text: "diff"},
		Summarizer: &summarizer.Static{Text: "ok"},
		Publisher:  &publisher.Memory{},
		Out:        &bytes.Buffer{},
		Log:        logging.New(base),
	}
	require.NoError(t, w.Run(context.Background()))
	require.NoError(t, w.Run(context.Background()))

	require.NotEmpty(t, prefixes)
	for _, p := range prefixes {
		assert.Equal(t, "workflow", p)
	}
}
