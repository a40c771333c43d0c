package repository

import (
	"context"

	"github.com/loanleads/backoffice/domain"
)

type MessageRepository interface {
	// History returns the complete ordered message history for a
	// conversation, ascending by (timestamp, id).
	History(ctx context.Context, sessionKey string) ([]domain.Message, error)
	Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	Delete(ctx context.Context, id int64) error
}
