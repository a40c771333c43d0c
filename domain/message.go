package domain

import "time"

// Message direction values: who authored the message.
const (
	DirectionCustomer = "customer"
	DirectionAgent    = "agent"
)

// Message is a single immutable entry in a conversation. Ordering is by
// timestamp ascending, tie-broken by id.
type Message struct {
	ID         int64     `json:"id"`
	SessionKey string    `json:"session_id"`
	Direction  string    `json:"direction"`
	Body       string    `json:"body"`
	MediaKey   string    `json:"media_key,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

// Before reports whether m sorts ahead of other in timeline order.
func (m Message) Before(other Message) bool {
	if m.Timestamp.Equal(other.Timestamp) {
		return m.ID < other.ID
	}
	return m.Timestamp.Before(other.Timestamp)
}
