package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository returns a Postgres-backed conversation repository.
func NewConversationRepository(pool *pgxpool.Pool) repository.ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) Get(ctx context.Context, sessionKey string) (*domain.Conversation, error) {
	const query = `
	SELECT session_key, COALESCE(lead_id, ''), assigned_agent, last_message_at, created_at, updated_at
	FROM conversations
	WHERE session_key = $1
	`
	row := r.pool.QueryRow(ctx, query, sessionKey)
	return scanConversation(row)
}

func (r *conversationRepository) List(ctx context.Context, filter repository.ConversationFilter) ([]domain.Conversation, error) {
	const query = `
	SELECT session_key, COALESCE(lead_id, ''), assigned_agent, last_message_at, created_at, updated_at
	FROM conversations
	WHERE ($1 = '' OR assigned_agent = $1)
	  AND (NOT $2 OR assigned_agent IS NULL OR assigned_agent = '')
	ORDER BY last_message_at DESC
	LIMIT NULLIF($3::int, 0) OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		filter.AssignedAgent,
		filter.Unassigned,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	return conversations, rows.Err()
}

// Touch upserts the conversation row, creating it implicitly on the first
// inbound message and bumping last_message_at otherwise.
func (r *conversationRepository) Touch(ctx context.Context, conv *domain.Conversation) error {
	if conv == nil || conv.SessionKey == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO conversations (session_key, lead_id, last_message_at)
	VALUES ($1, NULLIF($2, ''), $3)
	ON CONFLICT (session_key) DO UPDATE
	SET last_message_at = GREATEST(conversations.last_message_at, EXCLUDED.last_message_at),
		lead_id = COALESCE(conversations.lead_id, EXCLUDED.lead_id),
		updated_at = NOW()
	RETURNING created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		conv.SessionKey,
		conv.LeadID,
		conv.LastMessageAt,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
}

func (r *conversationRepository) Assign(ctx context.Context, sessionKey, profileID string) error {
	const query = `
	UPDATE conversations
	SET assigned_agent = $2, updated_at = NOW()
	WHERE session_key = $1
	`
	tag, err := r.pool.Exec(ctx, query, sessionKey, profileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func scanConversation(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := row.Scan(
		&conv.SessionKey,
		&conv.LeadID,
		&conv.AssignedAgent,
		&conv.LastMessageAt,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}
