package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdk "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"finrag-orchestrator/internal/domain"
)

const systemRole = "You are a helpful financial analyst assistant."

// ClientConfig carries the settings for the OpenAI-backed client.
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	EmbeddingModel    string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client implements domain.LLMClient and domain.Embedder over the OpenAI
// API, with a per-call timeout, client-side request pacing, and failure
// mapping onto the domain error taxonomy.
type Client struct {
	api            *sdk.Client
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// NewClient constructs the client. A zero RequestsPerSecond disables
// pacing; a nil HTTPClient uses the SDK default.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	sdkCfg := sdk.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		sdkCfg.HTTPClient = cfg.HTTPClient
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		api:            sdk.NewClientWithConfig(sdkCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        timeout,
		limiter:        rate.NewLimiter(limit, 1),
		logger:         logger,
	}
}

// Complete sends the prompt as a chat completion and returns the
// assistant message text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", c.mapErr(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: 0.1,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleSystem, Content: systemRole},
			{Role: sdk.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Error("llm_completion_failed",
			slog.String("model", c.chatModel),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", c.mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", domain.ErrMalformedResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrMalformedResponse)
	}

	c.logger.Info("llm_completion_done",
		slog.String("model", c.chatModel),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("prompt_chars", len(prompt)))
	return text, nil
}

// Embed returns the embedding vector for text, rejecting empty input.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.mapErr(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, sdk.EmbeddingRequest{
		Model: sdk.EmbeddingModel(c.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, c.mapErr(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding data returned", domain.ErrMalformedResponse)
	}

	src := resp.Data[0].Embedding
	vec := make([]float32, len(src))
	for i := range src {
		vec[i] = float32(src[i])
	}
	return vec, nil
}

// mapErr classifies SDK and transport failures into the domain taxonomy.
// Caller cancellation passes through untouched.
func (c *Client) mapErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrServiceTimeout, err)
	}

	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
}

var (
	_ domain.LLMClient = (*Client)(nil)
	_ domain.Embedder  = (*Client)(nil)
)
