package realtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/loanleads/backoffice/internal/cache"
	"github.com/loanleads/backoffice/internal/services/feed"
	chatUC "github.com/loanleads/backoffice/usecase/chat"
)

// Projector folds the global change feed into the in-process timeline
// store and drops cached list views whose conversation just changed.
// One projector runs per server; agent screens read the projected
// timelines instead of opening their own feed subscriptions.
type Projector struct {
	manager *feed.Manager
	store   *chatUC.ViewStore
	views   *cache.ViewCache
	logger  *zap.Logger

	cancel context.CancelFunc
	sub    *feed.Subscription
}

func NewProjector(manager *feed.Manager, store *chatUC.ViewStore, views *cache.ViewCache, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		manager: manager,
		store:   store,
		views:   views,
		logger:  logger,
	}
}

// Start opens the global feed subscription. The subscription's failure
// mode follows the manager's reconnect policy.
func (p *Projector) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	sub, err := p.manager.SubscribeAll(ctx, feed.Handlers{
		OnInsert: p.apply,
		OnUpdate: p.apply,
		OnDelete: p.apply,
	})
	if err != nil {
		cancel()
		return err
	}
	p.sub = sub
	p.logger.Info("feed projector started", zap.String("channel", sub.Channel()))
	return nil
}

func (p *Projector) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.sub != nil {
		_ = p.sub.Close()
	}
}

// Healthy reports whether the subscription is still live.
func (p *Projector) Healthy() bool {
	return p.sub != nil && !p.sub.Failed() && !p.sub.Closed()
}

func (p *Projector) apply(change feed.Change) {
	p.store.ApplyChange(change)
	if key := change.SessionKey(); key != "" && p.views != nil {
		p.views.InvalidateConversation(key)
	}
}
