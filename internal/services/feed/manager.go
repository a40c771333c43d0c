package feed

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
)

// Manager bridges Redis pub/sub row-change notifications into application
// callbacks, scoped either to one conversation or to the whole message
// table. The Redis client is injected; the manager holds no global state.
type Manager struct {
	client      *redislib.Client
	countryCode string
	policy      ReconnectPolicy
	interval    time.Duration
	logger      *zap.Logger
}

func NewManager(client *redislib.Client, countryCode string, policy ReconnectPolicy, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client:      client,
		countryCode: countryCode,
		policy:      policy,
		interval:    defaultRetryInterval,
		logger:      logger,
	}
}

// SubscribeConversation opens a logical channel delivering only changes
// whose session id equals the normalized key. Every call opens an
// independent channel; there is no dedup at this layer.
func (m *Manager) SubscribeConversation(ctx context.Context, sessionKey string, handlers Handlers) (*Subscription, error) {
	key := domain.NormalizeSessionKey(sessionKey, m.countryCode)
	if key == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "empty session key")
	}
	return m.open(ctx, ChannelFor(key), handlers)
}

// SubscribeAll opens a channel receiving every change on the message table.
func (m *Manager) SubscribeAll(ctx context.Context, handlers Handlers) (*Subscription, error) {
	return m.open(ctx, ChannelAll, handlers)
}

func (m *Manager) open(ctx context.Context, channel string, handlers Handlers) (*Subscription, error) {
	pubsub := m.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "subscribe failed", err)
	}

	sub := &Subscription{
		channel: channel,
		pubsub:  pubsub,
	}
	go m.receive(ctx, sub, handlers)

	m.logger.Debug("feed subscription opened", zap.String("channel", channel))
	return sub, nil
}

func (m *Manager) receive(ctx context.Context, sub *Subscription, handlers Handlers) {
	attempt := 0
	for {
		msg, err := sub.pubsub.ReceiveMessage(ctx)
		if err != nil {
			if sub.Closed() || ctx.Err() != nil {
				return
			}
			delay, retry := m.policy.nextDelay(m.interval, attempt)
			if !retry {
				// Baseline behavior: the subscription stays failed
				// until the caller re-subscribes.
				sub.failed.Store(true)
				m.logger.Error("feed subscription failed",
					zap.String("channel", sub.channel), zap.Error(err))
				return
			}
			attempt++
			m.logger.Warn("feed channel error, reconnecting",
				zap.String("channel", sub.channel),
				zap.Duration("delay", delay),
				zap.Error(err))
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return
			}
		}
		attempt = 0

		var change Change
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			m.logger.Warn("malformed change payload",
				zap.String("channel", sub.channel), zap.Error(err))
			continue
		}
		handlers.dispatch(change)
	}
}

// Subscription is a live feed channel. Close releases it; calling Close
// more than once is a no-op.
type Subscription struct {
	channel string
	pubsub  *redislib.PubSub

	closeOnce sync.Once
	closed    atomic.Bool
	failed    atomic.Bool
}

func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.pubsub.Close()
	})
	return err
}

func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

// Failed reports whether the channel errored out and stopped delivering.
func (s *Subscription) Failed() bool {
	return s.failed.Load()
}

// Channel returns the pub/sub channel name, mainly for logging.
func (s *Subscription) Channel() string {
	return s.channel
}
