package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
	"github.com/loanleads/backoffice/usecase"
)

// ListFilter is the console's task query. Segment and team filters join
// through leads and cannot be expressed in the primary query; they run
// as an in-memory post-filter.
type ListFilter struct {
	Segments      []string
	OwnerIDs      []string
	TeamIDs       []string
	ScheduledDate *time.Time
	Statuses      []string
	Page          int
	RowsPerPage   int
}

// ListResult carries one page plus the post-filter total. Count is always
// the filtered total, never the server-reported row count.
type ListResult struct {
	Data  []domain.DailyTask `json:"data"`
	Count int                `json:"count"`
}

type UseCase struct {
	tasks  repository.DailyTaskRepository
	leads  repository.LeadRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.DailyTaskRepository, leads repository.LeadRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		leads:  leads,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.DailyTask, error) {
	return uc.tasks.GetByID(ctx, id)
}

// List runs the three-phase query pipeline: server-capable filters first,
// then the in-memory team/segment post-filter, then pagination over the
// post-filter output with the count recomputed from it.
func (uc *UseCase) List(ctx context.Context, actorRole string, filter ListFilter) (*ListResult, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []string{domain.TaskStatusOpen}
	}

	date := filter.ScheduledDate
	if date == nil && !domain.RoleElevated(actorRole) {
		// "All dates" is an elevated-only view; everyone else is pinned
		// to today.
		today := uc.today()
		date = &today
	}

	// Phase 1: filters the primary query can express. The full filtered
	// set is fetched; pagination waits for phase 3.
	rows, err := uc.tasks.List(ctx, repository.TaskFilter{
		AssigneeIDs:   filter.OwnerIDs,
		Statuses:      statuses,
		ScheduledDate: date,
	})
	if err != nil {
		return nil, err
	}

	// Phase 2: team/segment filters resolved through lead lookups.
	if len(filter.TeamIDs) > 0 || len(filter.Segments) > 0 {
		rows, err = uc.postFilter(ctx, rows, filter.TeamIDs, filter.Segments)
		if err != nil {
			return nil, err
		}
	}

	// Phase 3: paginate over the post-filter output.
	count := len(rows)
	return &ListResult{
		Data:  paginate(rows, filter.Page, filter.RowsPerPage),
		Count: count,
	}, nil
}

// Close transitions an open task to closed with the given reason.
func (uc *UseCase) Close(ctx context.Context, id string, reason domain.CloseReason) (*domain.DailyTask, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Close(reason, uc.now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Info("task closed", zap.String("task", id), zap.String("reason", string(reason)))
	return task, nil
}

// Reopen transitions a closed task back to open. Elevated roles only.
func (uc *UseCase) Reopen(ctx context.Context, actorRole, id, notes string) (*domain.DailyTask, error) {
	if !domain.RoleElevated(actorRole) {
		return nil, domain.ErrForbidden
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Reopen(notes); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Info("task reopened", zap.String("task", id))
	return task, nil
}

// Reschedule moves an open task to a strictly future date. The guard is
// validated here, before any mutation is issued.
func (uc *UseCase) Reschedule(ctx context.Context, id string, date time.Time) (*domain.DailyTask, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Reschedule(date, uc.now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) postFilter(ctx context.Context, rows []domain.DailyTask, teamIDs, segments []string) ([]domain.DailyTask, error) {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seen[row.LeadID] {
			seen[row.LeadID] = true
			ids = append(ids, row.LeadID)
		}
	}

	var leads map[string]domain.Lead
	err := usecase.RetryQuery(ctx, 3, func(ctx context.Context) error {
		var lookupErr error
		leads, lookupErr = uc.leads.GetByIDs(ctx, ids)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}

	teamSet := toSet(teamIDs)
	segmentSet := toSet(segments)

	filtered := rows[:0:0]
	for _, row := range rows {
		lead, ok := leads[row.LeadID]
		if !ok {
			continue
		}
		if len(teamSet) > 0 && !teamSet[lead.TeamID] {
			continue
		}
		if len(segmentSet) > 0 && !segmentSet[lead.Segment] {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered, nil
}

func (uc *UseCase) today() time.Time {
	now := uc.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func paginate(rows []domain.DailyTask, page, rowsPerPage int) []domain.DailyTask {
	if rowsPerPage <= 0 {
		return rows
	}
	if page < 0 {
		page = 0
	}
	start := page * rowsPerPage
	if start >= len(rows) {
		return nil
	}
	end := start + rowsPerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
