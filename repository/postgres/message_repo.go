package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/services/feed"
	"github.com/loanleads/backoffice/repository"
)

type messageRepository struct {
	pool     *pgxpool.Pool
	notifier feed.Publisher
	logger   *zap.Logger
}

// NewMessageRepository returns a Postgres-backed message repository.
// Every committed mutation is published on the change feed; a publish
// failure is logged but does not fail the mutation, since the row is
// already durable.
func NewMessageRepository(pool *pgxpool.Pool, notifier feed.Publisher, logger *zap.Logger) repository.MessageRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &messageRepository{pool: pool, notifier: notifier, logger: logger}
}

func (r *messageRepository) History(ctx context.Context, sessionKey string) ([]domain.Message, error) {
	const query = `
	SELECT id, session_id, direction, body, COALESCE(media_key, ''), timestamp, created_at
	FROM messages
	WHERE session_id = $1
	ORDER BY timestamp ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.SessionKey, &msg.Direction, &msg.Body, &msg.MediaKey, &msg.Timestamp, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg == nil || msg.SessionKey == "" {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO messages (session_id, direction, body, media_key, timestamp)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		msg.SessionKey,
		msg.Direction,
		msg.Body,
		msg.MediaKey,
		msg.Timestamp,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, err
	}

	r.publish(ctx, feed.Change{Op: feed.OpInsert, New: msg})
	return msg, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *domain.Message) error {
	if msg == nil || msg.ID == 0 {
		return domain.ErrInvalidPayload
	}

	old, err := r.getByID(ctx, msg.ID)
	if err != nil {
		return err
	}

	const query = `
	UPDATE messages
	SET body = $2, media_key = NULLIF($3, '')
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, msg.ID, msg.Body, msg.MediaKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrCodeNotFound, "message not found")
	}

	msg.SessionKey = old.SessionKey
	r.publish(ctx, feed.Change{Op: feed.OpUpdate, New: msg, Old: old})
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	old, err := r.getByID(ctx, id)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrCodeNotFound, "message not found")
	}

	r.publish(ctx, feed.Change{Op: feed.OpDelete, Old: old})
	return nil
}

func (r *messageRepository) getByID(ctx context.Context, id int64) (*domain.Message, error) {
	const query = `
	SELECT id, session_id, direction, body, COALESCE(media_key, ''), timestamp, created_at
	FROM messages
	WHERE id = $1
	`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&msg.ID, &msg.SessionKey, &msg.Direction, &msg.Body, &msg.MediaKey, &msg.Timestamp, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrCodeNotFound, "message not found")
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) publish(ctx context.Context, change feed.Change) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.PublishChange(ctx, change); err != nil {
		r.logger.Warn("change feed publish failed",
			zap.String("op", string(change.Op)),
			zap.String("session", change.SessionKey()),
			zap.Error(err))
	}
}
