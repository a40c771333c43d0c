package domain

import (
	"strings"
	"time"
)

// Conversation is a logical thread of messages keyed by the canonical
// contact identifier (phone number). Conversations are created implicitly
// on the first inbound message and are never deleted by this service.
type Conversation struct {
	SessionKey    string    `json:"session_key"`
	LeadID        string    `json:"lead_id,omitempty"`
	AssignedAgent *string   `json:"assigned_agent,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Conversation) IsAssigned() bool {
	return c != nil && c.AssignedAgent != nil && *c.AssignedAgent != ""
}

// NormalizeSessionKey canonicalizes a contact identifier: a leading "+"
// is stripped, remaining digits are kept, and the country code prefix is
// ensured to be present exactly once.
func NormalizeSessionKey(raw, countryCode string) string {
	key := strings.TrimSpace(raw)
	key = strings.TrimPrefix(key, "+")

	var digits strings.Builder
	for _, r := range key {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	key = digits.String()
	if key == "" || countryCode == "" {
		return key
	}
	if !strings.HasPrefix(key, countryCode) {
		return countryCode + key
	}
	return key
}
