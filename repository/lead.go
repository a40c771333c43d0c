package repository

import (
	"context"

	"github.com/loanleads/backoffice/domain"
)

type LeadRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	// GetByIDs returns the leads found for the given ids, keyed by id.
	// Missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Lead, error)
	GetByPhone(ctx context.Context, sessionKey string) (*domain.Lead, error)
}

type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
}
