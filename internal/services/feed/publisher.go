package feed

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher is the write side of the change feed. The message repository
// publishes one Change per mutation.
type Publisher interface {
	PublishChange(ctx context.Context, change Change) error
}

// RedisPublisher fans a change out to the per-conversation channel and
// the global channel.
type RedisPublisher struct {
	client *redislib.Client
	logger *zap.Logger
}

func NewRedisPublisher(client *redislib.Client, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, logger: logger}
}

func (p *RedisPublisher) PublishChange(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	key := change.SessionKey()
	if key != "" {
		if err := p.client.Publish(ctx, ChannelFor(key), payload).Err(); err != nil {
			return err
		}
	}
	return p.client.Publish(ctx, ChannelAll, payload).Err()
}

// Fanout sends every change to all configured publishers. Secondary
// publisher failures (integration queues) are logged, not propagated, so
// a broken downstream cannot fail a mutation that already committed.
type Fanout struct {
	primary   Publisher
	secondary []Publisher
	logger    *zap.Logger
}

func NewFanout(primary Publisher, logger *zap.Logger, secondary ...Publisher) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fanout) PublishChange(ctx context.Context, change Change) error {
	err := f.primary.PublishChange(ctx, change)
	for _, p := range f.secondary {
		if pubErr := p.PublishChange(ctx, change); pubErr != nil {
			f.logger.Warn("secondary change publish failed", zap.Error(pubErr))
		}
	}
	return err
}
