package domain

import "time"

// Task status values. Closed tasks can always be reopened.
const (
	TaskStatusOpen   = "open"
	TaskStatusClosed = "closed"
)

// CloseReason is the enumerated justification required to close a task.
// Extend only by adding entries, never by renaming existing ones.
type CloseReason string

const (
	CloseReasonCustomerNI   CloseReason = "customer_ni"
	CloseReasonLowSalary    CloseReason = "low_sal"
	CloseReasonLongFollowUp CloseReason = "more_than_3_days_follow"
	CloseReasonDocsReceived CloseReason = "docs_received"
	CloseReasonCibilRelated CloseReason = "cibil_related"
)

var closeReasons = map[CloseReason]bool{
	CloseReasonCustomerNI:   true,
	CloseReasonLowSalary:    true,
	CloseReasonLongFollowUp: true,
	CloseReasonDocsReceived: true,
	CloseReasonCibilRelated: true,
}

// Valid reports whether r is one of the enumerated close reasons.
func (r CloseReason) Valid() bool {
	return closeReasons[r]
}

// DailyTask represents a follow-up item scheduled against a lead.
type DailyTask struct {
	ID            string       `json:"id"`
	LeadID        string       `json:"lead_id"`
	AssigneeID    string       `json:"assignee_id"`
	ScheduledDate time.Time    `json:"scheduled_date"`
	Status        string       `json:"status"`
	CloseReason   *CloseReason `json:"close_reason,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	ClosedAt      *time.Time   `json:"closed_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (t *DailyTask) IsOpen() bool {
	return t != nil && t.Status == TaskStatusOpen
}

// Consistent reports the status/close_reason invariant: a task is closed
// exactly when a close reason is recorded.
func (t *DailyTask) Consistent() bool {
	if t == nil {
		return false
	}
	return (t.Status == TaskStatusClosed) == (t.CloseReason != nil)
}

// Close transitions an open task to closed with the given reason.
func (t *DailyTask) Close(reason CloseReason, now time.Time) error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Status != TaskStatusOpen {
		return NewError(ErrCodeConflict, "task is not open")
	}
	if !reason.Valid() {
		return NewError(ErrCodeInvalid, "unknown close reason")
	}
	t.Status = TaskStatusClosed
	t.CloseReason = &reason
	t.ClosedAt = &now
	return nil
}

// Reopen transitions a closed task back to open, clearing the close fields.
func (t *DailyTask) Reopen(notes string) error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Status != TaskStatusClosed {
		return NewError(ErrCodeConflict, "task is not closed")
	}
	t.Status = TaskStatusOpen
	t.CloseReason = nil
	t.ClosedAt = nil
	if notes != "" {
		t.Notes = notes
	}
	return nil
}

// Reschedule moves an open task to a new date, which must be strictly
// after the reference day.
func (t *DailyTask) Reschedule(date, now time.Time) error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Status != TaskStatusOpen {
		return NewError(ErrCodeConflict, "task is not open")
	}
	today := now.Truncate(24 * time.Hour)
	if !date.Truncate(24 * time.Hour).After(today) {
		return NewError(ErrCodeInvalid, "reschedule date must be in the future")
	}
	t.ScheduledDate = date
	return nil
}
