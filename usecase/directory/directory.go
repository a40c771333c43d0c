// Package directory serves the read-only reference lookups the console's
// filter dropdowns need: profiles, teams, and leads.
package directory

import (
	"context"

	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type UseCase struct {
	profiles repository.ProfileRepository
	teams    repository.TeamRepository
	leads    repository.LeadRepository
	logger   *zap.Logger
}

func New(profiles repository.ProfileRepository, teams repository.TeamRepository, leads repository.LeadRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		profiles: profiles,
		teams:    teams,
		leads:    leads,
		logger:   logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return uc.profiles.GetByID(ctx, id)
}

func (uc *UseCase) TeamMembers(ctx context.Context, teamID string) ([]domain.Profile, error) {
	return uc.profiles.ListByTeam(ctx, teamID)
}

func (uc *UseCase) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return uc.teams.List(ctx)
}

func (uc *UseCase) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return uc.leads.GetByID(ctx, id)
}
