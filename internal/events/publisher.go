// Package events mirrors simulator events into Redis Streams so other
// processes can follow a run while it is in progress.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nidhogg/animseq/internal/sequence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultPrefix is prepended to the run ID to form the stream key.
const DefaultPrefix = "animseq:run:"

// Publisher writes every simulator event to a per-run stream.
type Publisher struct {
	rdb    *redis.Client
	prefix string
	maxLen int64
	logger *zap.Logger
}

// NewPublisher connects to redisURL and verifies the connection.
func NewPublisher(redisURL string, logger *zap.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewPublisherWithClient(rdb, DefaultPrefix, logger), nil
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(rdb *redis.Client, prefix string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{rdb: rdb, prefix: prefix, maxLen: 1000, logger: logger}
}

// StreamKey returns the stream a run's events are written to.
func (p *Publisher) StreamKey(runID string) string {
	return p.prefix + runID
}

// OnEvent implements sequence.Observer.
func (p *Publisher) OnEvent(ctx context.Context, ev sequence.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	stream := p.StreamKey(ev.RunID)
	_, err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Values: map[string]interface{}{
			"type": string(ev.Type),
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", stream, err)
	}

	p.logger.Debug("published event",
		zap.String("stream", stream),
		zap.String("type", string(ev.Type)))
	return nil
}

// Events reads back every event recorded for runID, oldest first.
func (p *Publisher) Events(ctx context.Context, runID string) ([]sequence.Event, error) {
	msgs, err := p.rdb.XRange(ctx, p.StreamKey(runID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.StreamKey(runID), err)
	}

	out := make([]sequence.Event, 0, len(msgs))
	for _, m := range msgs {
		data, ok := m.Values["data"].(string)
		if !ok {
			continue
		}
		var ev sequence.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			p.logger.Warn("skipping malformed event", zap.String("id", m.ID), zap.Error(err))
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Close shuts down the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
