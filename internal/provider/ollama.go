package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// OllamaProvider queries a local Ollama server's generate endpoint.
type OllamaProvider struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

// NewOllamaProvider creates a provider for an Ollama endpoint.
func NewOllamaProvider(cfg Config, logger *zap.Logger) *OllamaProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	if cfg.ID == "" {
		cfg.ID = "ollama"
	}
	return &OllamaProvider{
		config: cfg,
		client: newHTTPClient(cfg),
		logger: logger,
	}
}

func (p *OllamaProvider) ID() string   { return p.config.ID }
func (p *OllamaProvider) Name() string { return p.config.Name }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Generate sends a whole-response (non-streaming) generate request.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{Model: p.config.Model, Prompt: prompt, Stream: false}

	var resp ollamaResponse
	if err := postJSON(ctx, p.client, p.config.ID, p.config.Endpoint+"/api/generate", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", &GatewayError{
			Provider: p.config.ID,
			Op:       "decode response",
			Err:      fmt.Errorf("missing response field"),
		}
	}

	p.logger.Debug("ollama generate done",
		zap.String("model", p.config.Model),
		zap.Int("reply_len", len(*resp.Response)))
	return *resp.Response, nil
}
