// Package workflow runs the summary pipeline once, top to bottom:
// spec -> diff -> prompt -> summary -> comment -> stdout.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/roivaz/pr-summary/internal/changes"
	"github.com/roivaz/pr-summary/internal/config"
	"github.com/roivaz/pr-summary/internal/logging"
	"github.com/roivaz/pr-summary/internal/prompt"
	"github.com/roivaz/pr-summary/internal/publisher"
	"github.com/roivaz/pr-summary/internal/specs"
	"github.com/roivaz/pr-summary/internal/summarizer"
)

// ErrMissingPRNumber is returned before any work when no PR is configured.
var ErrMissingPRNumber = errors.New("missing PR_NUMBER")

type State string

const (
	StateStart           State = "Start"
	StateSpecLoaded      State = "SpecLoaded"
	StateDiffCollected   State = "DiffCollected"
	StatePromptBuilt     State = "PromptBuilt"
	StateSummaryReceived State = "SummaryReceived"
	StatePosted          State = "Posted"
	StateDone            State = "Done"
	StateFailed          State = "Failed"
)

// SpecResolver loads the specification text.
type SpecResolver func(dir string, patterns []string) (specs.Document, error)

// DiffCollector produces the diff text; it never fails.
type DiffCollector interface {
	Collect(ctx context.Context) changes.Result
}

type Workflow struct {
	Settings   config.Settings
	Specs      SpecResolver
	Diff       DiffCollector
	Summarizer summarizer.Summarizer
	Publisher  publisher.Publisher
	Out        io.Writer
	Log        logging.Logger

	// EstimateTokens, when set, is used to log the prompt size.
	EstimateTokens func(string) int

	state State
}

// State returns the last state reached.
func (w *Workflow) State() State {
	if w.state == "" {
		return StateStart
	}
	return w.state
}

func (w *Workflow) advance(log logging.Logger, next State) {
	w.state = next
	log.Debug("state", "state", string(next))
}

// Run executes every stage once. The first fatal error stops the run and
// leaves the workflow in StateFailed; nothing is retried.
func (w *Workflow) Run(ctx context.Context) (err error) {
	log := w.Log.WithName("workflow")
	w.state = StateStart
	defer func() {
		if err != nil {
			w.state = StateFailed
		}
	}()

	if w.Settings.PRNumber == "" {
		return ErrMissingPRNumber
	}
	log.Info("summarizing pull request", "pr", w.Settings.PRNumber)

	doc, err := w.Specs(w.Settings.SpecsDir, w.Settings.SpecPatterns)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}
	if doc.Found() {
		log.Info("spec loaded", "path", doc.Path, "chars", len(doc.Text))
	} else {
		log.Info("no spec files found", "dir", w.Settings.SpecsDir)
	}
	w.advance(log, StateSpecLoaded)

	diff := w.Diff.Collect(ctx)
	if diff.FailureCategory != changes.FailureCategoryNone {
		log.Info("diff degraded", "category", string(diff.FailureCategory), "placeholder", !diff.Available())
	}
	if diff.Available() {
		log.Info("diff collected", "base", diff.BaseRef, "files", len(diff.Files))
	}
	w.advance(log, StateDiffCollected)

	text := prompt.Build(doc.Text, diff.Text, w.Settings.MaxDiffChars)
	if w.EstimateTokens != nil {
		log.Debug("prompt built", "chars", len(text), "tokens_estimate", w.EstimateTokens(text))
	}
	w.advance(log, StatePromptBuilt)

	summary, err := w.Summarizer.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	w.advance(log, StateSummaryReceived)

	if w.Settings.DryRun {
		log.Info("dry run; not posting", "pr", w.Settings.PRNumber)
	} else {
		if err := w.Publisher.PostComment(ctx, w.Settings.PRNumber, summary); err != nil {
			return fmt.Errorf("post comment: %w", err)
		}
		w.advance(log, StatePosted)
	}

	if _, err := fmt.Fprintln(w.Out, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	w.advance(log, StateDone)
	return nil
}
