package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/roivaz/pr-summary/internal/logging"
)

const defaultTemperature = 0.2

type Config struct {
	Model       string
	APIKey      string // empty falls back to OPENAI_API_KEY inside the client
	BaseURL     string
	System      string
	Temperature float64
	CallTimeout time.Duration
	Logger      logging.Logger
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type OpenAI struct {
	llm contentGenerator
	cfg Config
	log logging.Logger
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model name is required")
	}
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return newOpenAI(client, cfg), nil
}

func newOpenAI(llm contentGenerator, cfg Config) *OpenAI {
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	return &OpenAI{llm: llm, cfg: cfg, log: cfg.Logger.WithName("summarizer")}
}

// Summarize sends one system and one user message and returns the first
// choice, trimmed. Errors are not retried.
func (o *OpenAI) Summarize(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: o.cfg.System}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	start := time.Now()
	o.log.Info("requesting summary", "model", o.cfg.Model, "prompt_chars", len(prompt))
	resp, err := o.llm.GenerateContent(ctx, messages, llms.WithTemperature(o.cfg.Temperature))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", o.annotateError(err))
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	o.log.Debug("summary received", "elapsed", time.Since(start).String())
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (o *OpenAI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.cfg.CallTimeout)
}

func (o *OpenAI) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && o.cfg.CallTimeout > 0 {
		return fmt.Errorf("llm call timed out after %s: %w", o.cfg.CallTimeout, err)
	}
	return err
}
