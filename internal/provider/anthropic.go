package provider

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AnthropicProvider implements Generator for the Messages API.
type AnthropicProvider struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg Config, logger *zap.Logger) *AnthropicProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.anthropic.com/v1"
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.ID == "" {
		cfg.ID = "anthropic"
	}
	return &AnthropicProvider{
		config: cfg,
		client: newHTTPClient(cfg),
		logger: logger,
	}
}

func (p *AnthropicProvider) ID() string   { return p.config.ID }
func (p *AnthropicProvider) Name() string { return p.config.Name }

type anthropicRequest struct {
	Model     string         `json:"model"`
	Messages  []anthropicMsg `json:"messages"`
	MaxTokens int            `json:"max_tokens"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Generate sends the prompt as a single user turn and joins the text blocks.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropicRequest{
		Model:     p.config.Model,
		Messages:  []anthropicMsg{{Role: "user", Content: prompt}},
		MaxTokens: 256,
	}
	headers := map[string]string{
		"x-api-key":         p.config.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var resp anthropicResponse
	if err := postJSON(ctx, p.client, p.config.ID, p.config.Endpoint+"/messages", headers, req, &resp); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &GatewayError{Provider: p.config.ID, Op: "decode response", Err: ErrEmptyResponse}
	}

	p.logger.Debug("anthropic message done",
		zap.String("model", resp.Model),
		zap.String("stop_reason", resp.StopReason))
	return text.String(), nil
}
