package provider

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// OpenAIProvider implements Generator for OpenAI-compatible chat APIs.
type OpenAIProvider struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg Config, logger *zap.Logger) *OpenAIProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.ID == "" {
		cfg.ID = "openai"
	}
	return &OpenAIProvider{
		config: cfg,
		client: newHTTPClient(cfg),
		logger: logger,
	}
}

func (p *OpenAIProvider) ID() string   { return p.config.ID }
func (p *OpenAIProvider) Name() string { return p.config.Name }

// chatURL builds the chat completions URL. If Extra["path_model"] is "true",
// the model name is inserted into the URL path.
func (p *OpenAIProvider) chatURL() string {
	if p.config.Extra["path_model"] == "true" && p.config.Model != "" {
		return p.config.Endpoint + "/" + p.config.Model + "/chat/completions"
	}
	return p.config.Endpoint + "/chat/completions"
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type openAIChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := openAIChatRequest{
		Model:    p.config.Model,
		Messages: []openAIMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{}
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}

	var resp openAIChatResponse
	if err := postJSON(ctx, p.client, p.config.ID, p.chatURL(), headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &GatewayError{Provider: p.config.ID, Op: "decode response", Err: ErrEmptyResponse}
	}

	p.logger.Debug("openai completion done",
		zap.String("model", resp.Model),
		zap.String("finish_reason", resp.Choices[0].FinishReason))
	return resp.Choices[0].Message.Content, nil
}
