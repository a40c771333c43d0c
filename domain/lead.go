package domain

import "time"

// Lead is a loan prospect. Leads are owned and mutated by the CRUD layer;
// this service treats them as read-only lookups keyed by UUID.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Segment   string    `json:"segment,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	TeamID    string    `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Team groups agent profiles for reporting and task filters.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeadID    string    `json:"lead_profile_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
