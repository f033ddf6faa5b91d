package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Generator sends one prompt to a text model and returns the raw reply.
type Generator interface {
	ID() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for a provider instance.
type Config struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"` // ollama|openai|anthropic
	Name     string            `json:"name"`
	Endpoint string            `json:"endpoint"`
	APIKey   string            `json:"api_key"`
	Model    string            `json:"model"`
	Extra    map[string]string `json:"extra,omitempty"`
	Timeout  time.Duration     `json:"timeout,omitempty"`
}

// GatewayError reports that a model query could not be completed:
// transport failure, non-success status, or an unusable response body.
type GatewayError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayError reports whether err carries a GatewayError.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

var (
	ErrEmptyResponse   = errors.New("empty response from provider")
	ErrUnknownProvider = errors.New("unknown provider type")
	ErrNoProvider      = errors.New("no provider registered")
)
