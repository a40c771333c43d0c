package transport

// AuthLoginRequest authenticates a back-office profile.
type AuthLoginRequest struct {
	ProfileID string `json:"profile_id"`
	TTL       int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// TaskCloseRequest closes a daily task with a mandatory reason.
type TaskCloseRequest struct {
	Reason string `json:"close_reason"`
}

// TaskReopenRequest reopens a closed task, optionally annotating why.
type TaskReopenRequest struct {
	Notes string `json:"notes"`
}

// TaskRescheduleRequest moves a task's follow-up to a future date (RFC 3339).
type TaskRescheduleRequest struct {
	ScheduledAt string `json:"scheduled_at"`
}

// SendMessageRequest posts an outbound message into a conversation.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// AssignRequest hands a conversation to another agent.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// InboundMessageRequest is the webhook payload delivered by the messaging gateway.
type InboundMessageRequest struct {
	From      string `json:"from"`
	Body      string `json:"body"`
	MediaKey  string `json:"media_key,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
