package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type teamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) repository.TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `SELECT id, name, COALESCE(lead_profile_id, ''), created_at FROM teams WHERE id = $1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(&team.ID, &team.Name, &team.LeadID, &team.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	const query = `SELECT id, name, COALESCE(lead_profile_id, ''), created_at FROM teams ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.LeadID, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
