// Package rabbit publishes message-change events to RabbitMQ for
// downstream integrations (reporting, bots). The connection is owned by
// the caller-constructed Publisher; when no URL is configured the
// constructor returns nil and publishing is skipped entirely.
package rabbit

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/internal/services/feed"
)

type Config struct {
	URL   string
	Queue string
}

type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
	logger  *zap.Logger
}

// NewPublisher dials RabbitMQ and opens a channel. An empty URL disables
// the integration: the returned publisher is nil and safe to skip.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" {
		logger.Info("rabbitmq url not set, integration events disabled")
		return nil, nil
	}
	if cfg.Queue == "" {
		cfg.Queue = "backoffice_message_events"
	}

	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq connection established", zap.String("queue", cfg.Queue))
	return &Publisher{
		conn:    conn,
		channel: channel,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

// PublishChange sends one change event to the configured queue. The
// declare is idempotent.
func (p *Publisher) PublishChange(ctx context.Context, change feed.Change) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	if _, err := p.channel.QueueDeclare(
		p.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
