package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cognicore/topicscan/internal/llm"
	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
)

// Provider completes a single user prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// AnthropicProvider calls the Messages API through the official SDK.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider builds a provider for model. baseURL may be empty.
func NewAnthropicProvider(apiKey, model, baseURL string, opts ...option.RequestOption) *AnthropicProvider {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	return &AnthropicProvider{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}
}

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: response has no text block")
}

// ChatProvider adapts an OpenAI-compatible chat client.
type ChatProvider struct {
	Client *llm.Client
}

func (p ChatProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return p.Client.Complete(ctx, prompt, maxTokens)
}

// NewProvider picks the backend named by cfg.Provider. It returns nil when
// AI is disabled or the chosen backend has no credentials.
func NewProvider(cfg config.AI, log logger.Logger) Provider {
	log = logger.OrNop(log)
	if !cfg.Enabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Warn("Anthropic API key missing, AI summaries unavailable")
			return nil
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model, cfg.BaseURL)
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.BaseURL == "" {
			log.Warn("OpenAI API key missing, AI summaries unavailable")
			return nil
		}
		base := cfg.BaseURL
		if base == "" {
			base = llm.DefaultBaseURL
		}
		return ChatProvider{Client: &llm.Client{BaseURL: base, APIKey: cfg.OpenAIAPIKey, Model: cfg.Model}}
	default:
		log.Warn("Unknown AI provider", logger.String("provider", cfg.Provider))
		return nil
	}
}
