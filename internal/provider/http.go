package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 120 * time.Second

func newHTTPClient(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON sends payload to url and decodes the JSON reply into out.
// Every failure is reported as a *GatewayError.
func postJSON(ctx context.Context, client *http.Client, providerID, url string,
	headers map[string]string, payload, out interface{}) error {
	fail := func(op string, status int, err error) error {
		return &GatewayError{Provider: providerID, Op: op, StatusCode: status, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fail("marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fail("create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fail("send request", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fail("API error", resp.StatusCode, errors.New(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail("decode response", resp.StatusCode, err)
	}
	return nil
}

// New creates a Generator for the configured backend type.
func New(cfg Config, logger *zap.Logger) (Generator, error) {
	switch cfg.Type {
	case "", "ollama":
		return NewOllamaProvider(cfg, logger), nil
	case "openai":
		return NewOpenAIProvider(cfg, logger), nil
	case "anthropic":
		return NewAnthropicProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Type)
	}
}
