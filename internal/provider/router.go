package provider

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Router holds several generators and answers with the first that succeeds:
// the default one, then the fallback chain in order.
type Router struct {
	providers map[string]Generator
	order     []string
	fallbacks []string
	defaults  string
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRouter creates a new provider router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		providers: make(map[string]Generator),
		logger:    logger,
	}
}

// ID implements Generator.
func (r *Router) ID() string { return "router" }

// Register adds a provider to the router. The first one becomes the default.
func (r *Router) Register(p Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.providers[p.ID()] = p
	if r.defaults == "" {
		r.defaults = p.ID()
	}
	r.logger.Info("registered provider", zap.String("id", p.ID()))
}

// SetDefault makes a registered provider the one queried first.
func (r *Router) SetDefault(providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[providerID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	r.defaults = providerID
	return nil
}

// DefaultID returns the current default provider ID.
func (r *Router) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults
}

// SetFallbacks configures the providers tried after the default fails.
func (r *Router) SetFallbacks(providerIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = providerIDs
}

// Generate sends the prompt through the default provider, then the fallbacks.
// The lock is released before any backend is called.
func (r *Router) Generate(ctx context.Context, prompt string) (string, error) {
	r.mu.RLock()
	defaultID := r.defaults
	primary, ok := r.providers[defaultID]
	chain := make([]Generator, 0, len(r.fallbacks))
	for _, fbID := range r.fallbacks {
		if fb, exists := r.providers[fbID]; exists && fbID != defaultID {
			chain = append(chain, fb)
		}
	}
	r.mu.RUnlock()

	if !ok {
		return "", &GatewayError{Provider: r.ID(), Op: "route", Err: ErrNoProvider}
	}

	text, err := primary.Generate(ctx, prompt)
	if err == nil {
		return text, nil
	}
	r.logger.Warn("primary provider failed, trying fallbacks",
		zap.String("provider", primary.ID()), zap.Error(err))

	for _, fb := range chain {
		if ctx.Err() != nil {
			break
		}
		text, err = fb.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		r.logger.Warn("fallback provider failed", zap.String("provider", fb.ID()), zap.Error(err))
	}

	if IsGatewayError(err) {
		return "", err
	}
	return "", &GatewayError{Provider: r.ID(), Op: "route", Err: err}
}

// GetProvider returns a provider by ID.
func (r *Router) GetProvider(id string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// ListProviders returns all registered providers in registration order.
func (r *Router) ListProviders() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Generator, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.providers[id])
	}
	return result
}

// Info describes a registered provider for listings.
type Info struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Default bool   `json:"default"`
}

// Describe lists the registered providers in registration order.
func (r *Router) Describe() []Info {
	defaultID := r.DefaultID()
	list := r.ListProviders()
	infos := make([]Info, 0, len(list))
	for _, p := range list {
		info := Info{ID: p.ID(), Default: p.ID() == defaultID}
		if n, ok := p.(interface{ Name() string }); ok {
			info.Name = n.Name()
		}
		infos = append(infos, info)
	}
	return infos
}
