package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a failed query is repeated.
// MaxAttempts <= 1 disables retries.
type RetryPolicy struct {
	MaxAttempts     int           `json:"max_attempts"`
	InitialInterval time.Duration `json:"initial_interval"`
	MaxInterval     time.Duration `json:"max_interval"`
}

// Retrying wraps a Generator with exponential backoff.
type Retrying struct {
	next   Generator
	policy RetryPolicy
	logger *zap.Logger
}

// WithRetry wraps next. When the policy allows a single attempt, next is returned as is.
func WithRetry(next Generator, policy RetryPolicy, logger *zap.Logger) Generator {
	if policy.MaxAttempts <= 1 {
		return next
	}
	return &Retrying{next: next, policy: policy, logger: logger}
}

func (r *Retrying) ID() string { return r.next.ID() }

// Generate retries gateway failures until the attempt budget or ctx runs out.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}
	b.MaxElapsedTime = 0

	var text string
	var lastErr error
	attempt := 0
	op := func() error {
		attempt++
		out, err := r.next.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			if !IsGatewayError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("model query failed, retrying",
			zap.String("provider", r.next.ID()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.MaxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		// A ctx expiring between attempts surfaces as the bare ctx error.
		if IsGatewayError(err) {
			return "", err
		}
		if lastErr != nil && IsGatewayError(lastErr) && errors.Is(err, ctx.Err()) {
			return "", lastErr
		}
		return "", &GatewayError{Provider: r.next.ID(), Op: "retry", Err: err}
	}
	return text, nil
}
