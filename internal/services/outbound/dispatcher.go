// Package outbound delivers agent replies to the WhatsApp gateway and
// parks them in a durable queue while the gateway is unreachable.
package outbound

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/infrastructure/outboundq"
)

// Config controls gateway access and the drain schedule.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// Dispatcher pushes replies to the gateway. A failed send is queued and
// drained on a schedule with bounded retries; items past the retry limit
// are dropped with a log line, never surfaced to the user.
type Dispatcher struct {
	client *resty.Client
	store  *outboundq.Store
	logger *zap.Logger
	cron   *cron.Cron
	cfg    Config
}

func NewDispatcher(store *outboundq.Store, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	d := &Dispatcher{
		client: client,
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := d.Drain(ctx); err != nil {
			d.logger.Error("outbound drain failed", zap.Error(err))
		}
	})

	return d
}

// Start launches the drain scheduler.
func (d *Dispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("outbound dispatcher started")
}

// Stop gracefully stops the scheduler.
func (d *Dispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("outbound dispatcher stopped")
}

// Send delivers one reply immediately, or queues it when the gateway is
// unreachable. The message row is already durable, so queueing is not an
// error for the caller.
func (d *Dispatcher) Send(ctx context.Context, sessionKey, body string) error {
	err := d.deliver(ctx, sessionKey, body)
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err, domain.ErrCodeInvalid) {
		return err
	}

	d.logger.Warn("gateway unreachable, queueing reply",
		zap.String("session", sessionKey), zap.Error(err))
	if d.store == nil {
		return domain.ErrGatewayUnavailable
	}
	return d.store.Enqueue(outboundq.Item{SessionKey: sessionKey, Body: body})
}

// Drain attempts delivery for queued items, oldest first.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil || d.store == nil {
		return nil
	}

	items, err := d.store.GetBatch(d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := d.deliver(ctx, item.SessionKey, item.Body); err != nil {
			item.Retries++
			if item.Retries >= d.cfg.MaxRetries {
				if err := d.store.Remove(item); err != nil {
					d.logger.Warn("failed to remove queued reply", zap.Error(err))
					continue
				}
				d.logger.Warn("dropping undeliverable reply",
					zap.String("item_id", item.ID),
					zap.String("session", item.SessionKey))
				continue
			}
			// Requeue is an atomic move; the item is never absent
			// from the queue between the insert and the delete.
			if err := d.store.Requeue(item); err != nil {
				d.logger.Error("failed to requeue reply", zap.Error(err))
			}
			continue
		}

		if err := d.store.Remove(item); err != nil {
			d.logger.Warn("failed to purge delivered reply", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of queued replies.
func (d *Dispatcher) Size() int {
	if d == nil || d.store == nil {
		return 0
	}
	size, err := d.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (d *Dispatcher) deliver(ctx context.Context, sessionKey, body string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"to":   sessionKey,
			"body": body,
		}).
		Post("/messages")
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 500 {
		return domain.WrapError(domain.ErrCodeUnavailable, "gateway error",
			fmt.Errorf("status %d", resp.StatusCode()))
	}
	if resp.StatusCode() >= 400 {
		return domain.WrapError(domain.ErrCodeInvalid, "gateway rejected message",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}
