package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of DailyTaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.DailyTaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.DailyTask, error) {
	const query = `
	SELECT id, lead_id, assignee_id, scheduled_date, status, close_reason, notes, closed_at, created_at, updated_at
	FROM daily_tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

// List applies the filters the query can express directly. A zero Limit
// means no limit: the use case fetches the full filtered set when team or
// segment post-filters must run in memory.
func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.DailyTask, error) {
	const query = `
	SELECT id, lead_id, assignee_id, scheduled_date, status, close_reason, notes, closed_at, created_at, updated_at
	FROM daily_tasks
	WHERE (cardinality($1::text[]) = 0 OR assignee_id = ANY($1))
	  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
	  AND ($3::date IS NULL OR scheduled_date = $3)
	ORDER BY created_at DESC, id DESC
	LIMIT NULLIF($4::int, 0) OFFSET $5
	`
	assignees := filter.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	statuses := filter.Statuses
	if statuses == nil {
		statuses = []string{}
	}

	rows, err := r.pool.Query(ctx, query,
		assignees,
		statuses,
		nullTime(filter.ScheduledDate),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.DailyTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.DailyTask) (*domain.DailyTask, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO daily_tasks (id, lead_id, assignee_id, scheduled_date, status, close_reason, notes, closed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.LeadID,
		task.AssigneeID,
		task.ScheduledDate,
		task.Status,
		closeReasonValue(task.CloseReason),
		task.Notes,
		nullTime(task.ClosedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.DailyTask) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE daily_tasks
	SET scheduled_date = $2,
		status = $3,
		close_reason = $4,
		notes = $5,
		closed_at = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.ScheduledDate,
		task.Status,
		closeReasonValue(task.CloseReason),
		task.Notes,
		nullTime(task.ClosedAt),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.DailyTask, error) {
	var task domain.DailyTask
	var reason *string

	if err := row.Scan(
		&task.ID,
		&task.LeadID,
		&task.AssigneeID,
		&task.ScheduledDate,
		&task.Status,
		&reason,
		&task.Notes,
		&task.ClosedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if reason != nil {
		cr := domain.CloseReason(*reason)
		task.CloseReason = &cr
	}
	return &task, nil
}

func closeReasonValue(reason *domain.CloseReason) interface{} {
	if reason == nil {
		return nil
	}
	return string(*reason)
}
