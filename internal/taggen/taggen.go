// Package taggen asks a chat completion model to suggest tags for a bookmark.
package taggen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/ratelimit"
)

// Provider selects the completion backend.
type Provider string

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Defaults applied by New when the config leaves a field empty.
const (
	DefaultOpenAIBaseURL  = "https://api.perplexity.ai"
	DefaultOpenAIModel    = "sonar"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultMaxTokens      = 100
	DefaultCount          = 10
	DefaultTimeout        = 20 * time.Second
	DefaultPerMinute      = 10

	// NoURLTag is returned instead of calling the model when the URL is empty.
	NoURLTag = "Could not get url"
)

// Config configures the generator.
type Config struct {
	Provider  Provider
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Count     int
	Timeout   time.Duration

	// Per-user quota for model calls.
	RequestsPerMinute int
	Burst             int
}

// Request describes the bookmark tags are generated for.
type Request struct {
	UserID    string
	Count     int
	URL       string
	Title     string
	Content   string
	UserTags  []string
	LikedTags []string
}

// completer sends one prompt and returns the raw reply text.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Generator suggests tags via an LLM.
type Generator struct {
	cfg     Config
	client  completer
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a Generator. A config without an API key yields a generator
// whose SuggestTags always fails with an external service error.
func New(cfg Config, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultPerMinute
	}

	g := &Generator{
		cfg:     cfg,
		limiter: ratelimit.PerMinute(cfg.RequestsPerMinute, cfg.Burst),
		logger:  logger,
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if g.cfg.BaseURL == "" {
			g.cfg.BaseURL = DefaultOpenAIBaseURL
		}
		if g.cfg.Model == "" {
			g.cfg.Model = DefaultOpenAIModel
		}
		if cfg.APIKey != "" {
			g.client = newOpenAIClient(g.cfg)
		}
	case ProviderAnthropic:
		if g.cfg.Model == "" {
			g.cfg.Model = DefaultAnthropicModel
		}
		if cfg.APIKey != "" {
			g.client = newAnthropicClient(g.cfg)
		}
	default:
		g.limiter.Stop()
		return nil, fmt.Errorf("unknown tag generation provider %q", cfg.Provider)
	}

	if g.client == nil {
		logger.Warn("tag generation disabled: no API key configured", "provider", cfg.Provider)
	}
	return g, nil
}

// Configured reports whether an API key is present.
func (g *Generator) Configured() bool {
	return g.client != nil
}

// Close releases the rate limiter.
func (g *Generator) Close() {
	g.limiter.Stop()
}

// SuggestTags returns up to req.Count tag names for the bookmark.
func (g *Generator) SuggestTags(ctx context.Context, req Request) ([]string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return []string{NoURLTag}, nil
	}
	if g.client == nil {
		return nil, errors.ExternalService("tag generation not configured")
	}
	if req.Count <= 0 {
		req.Count = g.cfg.Count
	}

	if err := g.limiter.Wait(ctx, req.UserID); err != nil {
		return nil, errors.RateLimited("tag generation rate limit exceeded")
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	reply, err := g.client.complete(ctx, BuildPrompt(req))
	if err != nil {
		g.logger.Warn("tag generation failed",
			"provider", g.cfg.Provider,
			"url", req.URL,
			"error", err,
		)
		return nil, errors.Wrap(err, errors.CodeExternalService, "tag generation failed")
	}

	tags := ParseTags(reply, req.Count)
	g.logger.Debug("tags generated",
		"provider", g.cfg.Provider,
		"url", req.URL,
		"count", len(tags),
		"duration", time.Since(start),
	)
	return tags, nil
}

type openAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func newOpenAIClient(cfg Config) *openAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	return &openAIClient{
		client:    openai.NewClientWithConfig(config),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *openAIClient) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func newAnthropicClient(cfg Config) *anthropicClient {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicClient{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *anthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					{Type: "text", Text: &prompt},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("message returned no content")
	}
	return resp.Content[0].GetText(), nil
}
