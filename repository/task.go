package repository

import (
	"context"
	"time"

	"github.com/loanleads/backoffice/domain"
)

// TaskFilter carries the filters the primary query can express directly.
// Team and segment filters require joining through leads and are applied
// by the use case after the fetch.
type TaskFilter struct {
	AssigneeIDs   []string
	Statuses      []string
	ScheduledDate *time.Time
	Limit         int
	Offset        int
}

type DailyTaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.DailyTask, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.DailyTask, error)
	Create(ctx context.Context, task *domain.DailyTask) (*domain.DailyTask, error)
	Update(ctx context.Context, task *domain.DailyTask) error
}
