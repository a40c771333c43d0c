package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository returns a Postgres-backed read-only lead lookup.
func NewLeadRepository(pool *pgxpool.Pool) repository.LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `id, name, phone, COALESCE(segment, ''), COALESCE(owner_id, ''), COALESCE(team_id, ''), created_at, updated_at`

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *leadRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Lead, error) {
	result := make(map[string]domain.Lead, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		result[lead.ID] = *lead
	}
	return result, rows.Err()
}

func (r *leadRepository) GetByPhone(ctx context.Context, sessionKey string) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE phone = $1`, sessionKey)
	return scanLead(row)
}

func scanLead(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Lead, error) {
	var lead domain.Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&lead.Segment,
		&lead.OwnerID,
		&lead.TeamID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}
