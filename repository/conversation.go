package repository

import (
	"context"

	"github.com/loanleads/backoffice/domain"
)

type ConversationFilter struct {
	AssignedAgent string
	Unassigned    bool
	Limit         int
	Offset        int
}

type ConversationRepository interface {
	Get(ctx context.Context, sessionKey string) (*domain.Conversation, error)
	List(ctx context.Context, filter ConversationFilter) ([]domain.Conversation, error)
	// Touch upserts the conversation row on an inbound message, bumping
	// last_message_at.
	Touch(ctx context.Context, conv *domain.Conversation) error
	Assign(ctx context.Context, sessionKey, profileID string) error
}
