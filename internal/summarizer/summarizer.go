// Package summarizer turns a prompt into PR summary text. It is the only
// non-deterministic step of the pipeline.
package summarizer

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when the model answers without any choice.
var ErrEmptyResponse = errors.New("empty completion response")

type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Static returns canned text and records every prompt it is given.
type Static struct {
	Text string
	Err  error

	Prompts []string
}

func (s *Static) Summarize(_ context.Context, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return strings.TrimSpace(s.Text), nil
}

var (
	_ Summarizer = (*Static)(nil)
	_ Summarizer = (*OpenAI)(nil)
)
