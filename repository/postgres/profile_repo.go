package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates a Postgres-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, COALESCE(email, ''), name, role, COALESCE(team_id, ''), status, created_at, updated_at`

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (r *profileRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE team_id = $1 ORDER BY name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.Name,
		&profile.Role,
		&profile.TeamID,
		&profile.Status,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}
