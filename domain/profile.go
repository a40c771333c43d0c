package domain

import "time"

// Profile roles. Elevated roles may reopen tasks and list tasks across
// all dates.
const (
	RoleAgent    = "agent"
	RoleTeamLead = "team_lead"
	RoleAdmin    = "admin"
)

// Profile represents an authenticated back-office identity.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	TeamID    string    `json:"team_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) IsActive() bool {
	return p != nil && p.Status == "active"
}

// Elevated reports whether the role grants admin-only operations.
func (p *Profile) Elevated() bool {
	return p != nil && RoleElevated(p.Role)
}

// RoleElevated reports whether a role string grants admin-only operations.
func RoleElevated(role string) bool {
	return role == RoleAdmin || role == RoleTeamLead
}
