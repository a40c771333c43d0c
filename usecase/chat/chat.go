package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/cache"
	"github.com/loanleads/backoffice/repository"
)

// GatewaySender delivers an agent reply to the external messaging gateway.
type GatewaySender interface {
	Send(ctx context.Context, sessionKey, body string) error
}

type UseCase struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	leads         repository.LeadRepository
	views         *cache.ViewCache
	store         *ViewStore
	gateway       GatewaySender
	countryCode   string
	logger        *zap.Logger
}

func New(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	leads repository.LeadRepository,
	views *cache.ViewCache,
	store *ViewStore,
	gateway GatewaySender,
	countryCode string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		conversations: conversations,
		messages:      messages,
		leads:         leads,
		views:         views,
		store:         store,
		gateway:       gateway,
		countryCode:   countryCode,
		logger:        logger,
	}
}

// SessionKey canonicalizes a raw contact identifier.
func (uc *UseCase) SessionKey(raw string) string {
	return domain.NormalizeSessionKey(raw, uc.countryCode)
}

// History returns the complete ordered message history for a
// conversation. The fetch merges into the projected timeline so feed
// events that arrived while the query ran are kept.
func (uc *UseCase) History(ctx context.Context, rawKey string) ([]domain.Message, error) {
	key := uc.SessionKey(rawKey)
	if key == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "empty session key")
	}
	history, err := uc.messages.History(ctx, key)
	if err != nil {
		return nil, err
	}
	if uc.store != nil {
		uc.store.ApplyHistory(key, history)
		return uc.store.Messages(key), nil
	}
	return history, nil
}

// ListConversations serves the console list, caching the unfiltered
// first page.
func (uc *UseCase) ListConversations(ctx context.Context, filter repository.ConversationFilter) ([]domain.Conversation, error) {
	cacheable := filter.AssignedAgent == "" && !filter.Unassigned && filter.Offset == 0
	if cacheable && uc.views != nil {
		if list, ok := uc.views.ConversationList(); ok {
			return list, nil
		}
	}

	list, err := uc.conversations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if cacheable && uc.views != nil {
		uc.views.SetConversationList(list)
	}
	return list, nil
}

// AssignConversation sets the assigned agent in a single mutation and
// invalidates the dependent caches so subsequent reads reflect the new
// owner. The mutation is never retried automatically.
func (uc *UseCase) AssignConversation(ctx context.Context, rawKey, profileID string) error {
	key := uc.SessionKey(rawKey)
	if key == "" || profileID == "" {
		return domain.ErrInvalidPayload
	}

	if err := uc.conversations.Assign(ctx, key, profileID); err != nil {
		return err
	}
	if uc.views != nil {
		uc.views.InvalidateConversation(key)
	}
	uc.logger.Info("conversation assigned",
		zap.String("session", key), zap.String("profile", profileID))
	return nil
}

// LeadInfo resolves the lead behind a conversation, through the
// per-conversation cache.
func (uc *UseCase) LeadInfo(ctx context.Context, rawKey string) (*domain.Lead, error) {
	key := uc.SessionKey(rawKey)
	if key == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "empty session key")
	}

	if uc.views != nil {
		if lead, ok := uc.views.LeadInfo(key); ok {
			return lead, nil
		}
	}

	lead, err := uc.leads.GetByPhone(ctx, key)
	if err != nil {
		return nil, err
	}
	if uc.views != nil {
		uc.views.SetLeadInfo(key, *lead)
	}
	return lead, nil
}

// SendMessage records an agent reply and hands it to the gateway. The
// insert fans out on the change feed; gateway delivery is the outbound
// dispatcher's concern.
func (uc *UseCase) SendMessage(ctx context.Context, rawKey, body string) (*domain.Message, error) {
	key := uc.SessionKey(rawKey)
	if key == "" || body == "" {
		return nil, domain.ErrInvalidPayload
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		SessionKey: key,
		Direction:  domain.DirectionAgent,
		Body:       body,
		Timestamp:  now,
	}
	if _, err := uc.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if err := uc.conversations.Touch(ctx, &domain.Conversation{SessionKey: key, LastMessageAt: now}); err != nil {
		uc.logger.Warn("conversation touch failed", zap.String("session", key), zap.Error(err))
	}

	if uc.gateway != nil {
		if err := uc.gateway.Send(ctx, key, body); err != nil {
			return msg, err
		}
	}
	return msg, nil
}

// ReceiveInbound records a customer message posted by the gateway
// webhook, creating the conversation implicitly on first contact.
func (uc *UseCase) ReceiveInbound(ctx context.Context, rawKey, body, mediaKey string, ts time.Time) (*domain.Message, error) {
	key := uc.SessionKey(rawKey)
	if key == "" || (body == "" && mediaKey == "") {
		return nil, domain.ErrInvalidPayload
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	conv := &domain.Conversation{SessionKey: key, LastMessageAt: ts}
	if lead, err := uc.leads.GetByPhone(ctx, key); err == nil {
		conv.LeadID = lead.ID
	}
	if err := uc.conversations.Touch(ctx, conv); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		SessionKey: key,
		Direction:  domain.DirectionCustomer,
		Body:       body,
		MediaKey:   mediaKey,
		Timestamp:  ts,
	}
	if _, err := uc.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if uc.views != nil {
		uc.views.InvalidateConversation(key)
	}
	return msg, nil
}
