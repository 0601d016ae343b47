package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/roivaz/appliance-diag/internal/logging"
)

// ErrGeneration marks any failure of the external generation call.
var ErrGeneration = errors.New("generation service error")

// Client sends one prompt per call to the configured generation backend.
// Build it once at start-up and share it; it keeps no per-call state.
type Client struct {
	llm        llms.Model
	log        logging.Logger
	to         time.Duration
	opts       []llms.CallOption
	structured bool
	model      string
}

// New creates the backend model described by cfg.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var (
		model llms.Model
		err   error
	)
	switch cfg.Backend {
	case BackendGemini:
		model, err = NewGeminiModel(ctx, cfg.APIKey, cfg.Model, cfg.Structured)
	case BackendOllama:
		model, err = newOllamaModel(cfg)
	}
	if err != nil {
		return nil, err
	}
	return NewWithModel(model, cfg), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, cfg Config) *Client {
	opts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxOutputTokens))
	}
	return &Client{
		llm:        model,
		log:        logging.New(cfg.Logger).WithName("generation"),
		to:         cfg.CallTimeout,
		opts:       opts,
		structured: cfg.Structured,
		model:      cfg.Model,
	}
}

func newOllamaModel(cfg Config) (llms.Model, error) {
	opts := []ollama.Option{
		ollama.WithModel(cfg.Model),
		ollama.WithKeepAlive("5m"),
	}
	if trimmed := strings.TrimSpace(cfg.OllamaURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	if cfg.Structured {
		opts = append(opts, ollama.WithFormat("json"))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return client, nil
}

// Structured reports whether the backend was asked for JSON sections.
func (c *Client) Structured() bool {
	return c.structured
}

// Generate returns the text produced for prompt. Every failure wraps
// ErrGeneration.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx, messages, c.opts...)
	if err != nil {
		annotated := c.annotateError(err)
		c.log.Error(annotated, "generation failed", "model", c.model, "elapsed", time.Since(start).String())
		return "", fmt.Errorf("%w: %w", ErrGeneration, annotated)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	c.log.Debug("generation completed", "model", c.model, "elapsed", time.Since(start).String(), "chars", len(resp.Choices[0].Content))
	return resp.Choices[0].Content, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *Client) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("llm call timed out after %s: %w", c.to, err)
	}
	return err
}
