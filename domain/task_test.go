package domain

import (
	"testing"
	"time"
)

func openTask() *DailyTask {
	return &DailyTask{
		ID:            "t-1",
		LeadID:        "lead-1",
		AssigneeID:    "agent-1",
		ScheduledDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Status:        TaskStatusOpen,
	}
}

func TestTaskCloseSetsReasonAndTimestamp(t *testing.T) {
	task := openTask()
	now := time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)

	if err := task.Close(CloseReasonDocsReceived, now); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if task.Status != TaskStatusClosed {
		t.Fatalf("unexpected status: %s", task.Status)
	}
	if task.CloseReason == nil || *task.CloseReason != CloseReasonDocsReceived {
		t.Fatalf("unexpected close reason: %v", task.CloseReason)
	}
	if task.ClosedAt == nil || !task.ClosedAt.Equal(now) {
		t.Fatalf("unexpected closed_at: %v", task.ClosedAt)
	}
	if !task.Consistent() {
		t.Fatal("closed task must carry a close reason")
	}
}

func TestTaskCloseRejectsUnknownReason(t *testing.T) {
	task := openTask()
	if err := task.Close(CloseReason("wont_pay"), time.Now()); err == nil {
		t.Fatal("expected error for unknown close reason")
	}
	if task.Status != TaskStatusOpen {
		t.Fatalf("status changed on rejected close: %s", task.Status)
	}
}

func TestTaskCloseRejectsAlreadyClosed(t *testing.T) {
	task := openTask()
	if err := task.Close(CloseReasonLowSalary, time.Now()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := task.Close(CloseReasonCustomerNI, time.Now()); err == nil {
		t.Fatal("expected error closing an already closed task")
	}
}

func TestTaskReopenClearsCloseFields(t *testing.T) {
	task := openTask()
	if err := task.Close(CloseReasonCibilRelated, time.Now()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := task.Reopen("customer called back"); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if task.Status != TaskStatusOpen {
		t.Fatalf("unexpected status: %s", task.Status)
	}
	if task.CloseReason != nil || task.ClosedAt != nil {
		t.Fatalf("close fields not cleared: reason=%v closed_at=%v", task.CloseReason, task.ClosedAt)
	}
	if task.Notes != "customer called back" {
		t.Fatalf("unexpected notes: %s", task.Notes)
	}
	if !task.Consistent() {
		t.Fatal("open task must not carry a close reason")
	}
}

func TestTaskReopenRejectsOpenTask(t *testing.T) {
	task := openTask()
	if err := task.Reopen(""); err == nil {
		t.Fatal("expected error reopening an open task")
	}
}

func TestTaskRescheduleGuard(t *testing.T) {
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{"past date", now.AddDate(0, 0, -1), true},
		{"same day", now, true},
		{"next day", now.AddDate(0, 0, 1), false},
		{"next week", now.AddDate(0, 0, 7), false},
	}

	for _, tc := range cases {
		task := openTask()
		err := task.Reschedule(tc.date, now)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !tc.wantErr {
			if err != nil {
				t.Fatalf("%s: reschedule failed: %v", tc.name, err)
			}
			if !task.ScheduledDate.Equal(tc.date) {
				t.Fatalf("%s: scheduled_date not updated", tc.name)
			}
		}
	}
}

func TestCloseReasonEnum(t *testing.T) {
	valid := []CloseReason{
		CloseReasonCustomerNI,
		CloseReasonLowSalary,
		CloseReasonLongFollowUp,
		CloseReasonDocsReceived,
		CloseReasonCibilRelated,
	}
	for _, r := range valid {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if CloseReason("").Valid() || CloseReason("other").Valid() {
		t.Fatal("unexpected close reason accepted")
	}
}
