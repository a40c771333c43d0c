package repository

import (
	"context"

	"github.com/loanleads/backoffice/domain"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Profile, error)
}
