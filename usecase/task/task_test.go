package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/repository"
)

type fakeTaskRepo struct {
	tasks   map[string]*domain.DailyTask
	listOut []domain.DailyTask
	lastIn  repository.TaskFilter
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.DailyTask, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.DailyTask, error) {
	f.lastIn = filter
	return f.listOut, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.DailyTask) (*domain.DailyTask, error) {
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.DailyTask) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

type fakeLeadRepo struct {
	leads map[string]domain.Lead
}

func (f *fakeLeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	return &lead, nil
}

func (f *fakeLeadRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.Lead, error) {
	out := make(map[string]domain.Lead, len(ids))
	for _, id := range ids {
		if lead, ok := f.leads[id]; ok {
			out[id] = lead
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) GetByPhone(_ context.Context, _ string) (*domain.Lead, error) {
	return nil, domain.ErrLeadNotFound
}

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestUseCase(tasks *fakeTaskRepo, leads *fakeLeadRepo) *UseCase {
	uc := New(tasks, leads, nil)
	uc.now = func() time.Time { return testNow }
	return uc
}

func TestCloseSetsReasonAndClosedAt(t *testing.T) {
	repo := &fakeTaskRepo{tasks: map[string]*domain.DailyTask{
		"t1": {ID: "t1", LeadID: "l1", Status: domain.TaskStatusOpen},
	}}
	uc := newTestUseCase(repo, &fakeLeadRepo{})

	closed, err := uc.Close(context.Background(), "t1", domain.CloseReasonDocsReceived)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != domain.TaskStatusClosed {
		t.Fatalf("unexpected status: %s", closed.Status)
	}
	if closed.CloseReason == nil || *closed.CloseReason != domain.CloseReasonDocsReceived {
		t.Fatalf("unexpected close reason: %v", closed.CloseReason)
	}
	if closed.ClosedAt == nil {
		t.Fatal("closed_at not set")
	}

	stored := repo.tasks["t1"]
	if !stored.Consistent() {
		t.Fatal("stored row violates status/close_reason invariant")
	}
}

func TestReopenRequiresElevatedRole(t *testing.T) {
	reason := domain.CloseReasonLowSalary
	closedAt := testNow.Add(-time.Hour)
	repo := &fakeTaskRepo{tasks: map[string]*domain.DailyTask{
		"t1": {ID: "t1", Status: domain.TaskStatusClosed, CloseReason: &reason, ClosedAt: &closedAt},
	}}
	uc := newTestUseCase(repo, &fakeLeadRepo{})

	if _, err := uc.Reopen(context.Background(), domain.RoleAgent, "t1", ""); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	reopened, err := uc.Reopen(context.Background(), domain.RoleAdmin, "t1", "follow up again")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Status != domain.TaskStatusOpen || reopened.CloseReason != nil || reopened.ClosedAt != nil {
		t.Fatalf("reopen did not clear close fields: %+v", reopened)
	}
}

func TestRescheduleRejectsPastDates(t *testing.T) {
	repo := &fakeTaskRepo{tasks: map[string]*domain.DailyTask{
		"t1": {ID: "t1", Status: domain.TaskStatusOpen, ScheduledDate: testNow},
	}}
	uc := newTestUseCase(repo, &fakeLeadRepo{})

	if _, err := uc.Reschedule(context.Background(), "t1", testNow); err == nil {
		t.Fatal("expected validation error for same-day reschedule")
	}
	if _, err := uc.Reschedule(context.Background(), "t1", testNow.AddDate(0, 0, -2)); err == nil {
		t.Fatal("expected validation error for past reschedule")
	}

	tomorrow := testNow.AddDate(0, 0, 1)
	updated, err := uc.Reschedule(context.Background(), "t1", tomorrow)
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if !updated.ScheduledDate.Equal(tomorrow) {
		t.Fatalf("scheduled_date not updated: %v", updated.ScheduledDate)
	}
}

func TestListDefaultsToOpenAndToday(t *testing.T) {
	repo := &fakeTaskRepo{}
	uc := newTestUseCase(repo, &fakeLeadRepo{})

	if _, err := uc.List(context.Background(), domain.RoleAgent, ListFilter{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(repo.lastIn.Statuses) != 1 || repo.lastIn.Statuses[0] != domain.TaskStatusOpen {
		t.Fatalf("unexpected status filter: %v", repo.lastIn.Statuses)
	}
	if repo.lastIn.ScheduledDate == nil {
		t.Fatal("non-elevated caller must be pinned to today")
	}
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !repo.lastIn.ScheduledDate.Equal(want) {
		t.Fatalf("unexpected pinned date: %v", repo.lastIn.ScheduledDate)
	}
}

func TestListAllDatesForElevatedRole(t *testing.T) {
	repo := &fakeTaskRepo{}
	uc := newTestUseCase(repo, &fakeLeadRepo{})

	if _, err := uc.List(context.Background(), domain.RoleAdmin, ListFilter{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if repo.lastIn.ScheduledDate != nil {
		t.Fatalf("elevated caller should see all dates, got %v", repo.lastIn.ScheduledDate)
	}
}

func TestListPostFilterCount(t *testing.T) {
	// 37 raw rows; 12 belong to leads on team-x.
	leads := &fakeLeadRepo{leads: map[string]domain.Lead{}}
	repo := &fakeTaskRepo{}
	for i := 0; i < 37; i++ {
		leadID := fmt.Sprintf("lead-%d", i)
		teamID := "team-y"
		if i < 12 {
			teamID = "team-x"
		}
		leads.leads[leadID] = domain.Lead{ID: leadID, TeamID: teamID}
		repo.listOut = append(repo.listOut, domain.DailyTask{
			ID:     fmt.Sprintf("t-%d", i),
			LeadID: leadID,
			Status: domain.TaskStatusOpen,
		})
	}
	uc := newTestUseCase(repo, leads)

	result, err := uc.List(context.Background(), domain.RoleAdmin, ListFilter{
		TeamIDs:     []string{"team-x"},
		RowsPerPage: 10,
		Page:        0,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Count != 12 {
		t.Fatalf("count must equal post-filter length: got %d, want 12", result.Count)
	}
	if len(result.Data) != 10 {
		t.Fatalf("unexpected page size: %d", len(result.Data))
	}

	last, err := uc.List(context.Background(), domain.RoleAdmin, ListFilter{
		TeamIDs:     []string{"team-x"},
		RowsPerPage: 10,
		Page:        1,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if last.Count != 12 || len(last.Data) != 2 {
		t.Fatalf("unexpected final page: count=%d len=%d", last.Count, len(last.Data))
	}
}

func TestListSegmentPostFilter(t *testing.T) {
	leads := &fakeLeadRepo{leads: map[string]domain.Lead{
		"l1": {ID: "l1", Segment: "salaried"},
		"l2": {ID: "l2", Segment: "self_employed"},
	}}
	repo := &fakeTaskRepo{listOut: []domain.DailyTask{
		{ID: "t1", LeadID: "l1", Status: domain.TaskStatusOpen},
		{ID: "t2", LeadID: "l2", Status: domain.TaskStatusOpen},
	}}
	uc := newTestUseCase(repo, leads)

	result, err := uc.List(context.Background(), domain.RoleAdmin, ListFilter{
		Segments: []string{"salaried"},
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Count != 1 || result.Data[0].ID != "t1" {
		t.Fatalf("unexpected segment filter result: %+v", result)
	}
}

func TestPaginateBounds(t *testing.T) {
	rows := make([]domain.DailyTask, 5)
	for i := range rows {
		rows[i].ID = fmt.Sprintf("t-%d", i)
	}

	if got := paginate(rows, 0, 2); len(got) != 2 {
		t.Fatalf("unexpected first page: %d", len(got))
	}
	if got := paginate(rows, 2, 2); len(got) != 1 {
		t.Fatalf("unexpected last page: %d", len(got))
	}
	if got := paginate(rows, 3, 2); got != nil {
		t.Fatalf("expected empty page past the end, got %d", len(got))
	}
	if got := paginate(rows, 0, 0); len(got) != 5 {
		t.Fatalf("zero rowsPerPage must return all rows, got %d", len(got))
	}
}

func TestPaginateClampsNegativePage(t *testing.T) {
	rows := make([]domain.DailyTask, 5)
	for i := range rows {
		rows[i].ID = fmt.Sprintf("t-%d", i)
	}

	got := paginate(rows, -1, 2)
	if len(got) != 2 {
		t.Fatalf("negative page must clamp to the first page, got %d rows", len(got))
	}
	if got[0].ID != "t-0" {
		t.Fatalf("negative page must start at the first row, got %s", got[0].ID)
	}
	if got := paginate(rows, -7, 2); len(got) != 2 || got[0].ID != "t-0" {
		t.Fatalf("deeply negative page must clamp to the first page")
	}
}
