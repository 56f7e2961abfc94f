package domain

import "time"

// Role is a caller's capability level within one league.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleScorekeeper Role = "scorekeeper"
	RoleViewer      Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleScorekeeper, RoleViewer:
		return true
	}
	return false
}

// Grant gives a user a role within a league. Grants are stored under the
// league partition so one prefix query lists a league's members.
type Grant struct {
	LeagueID  string    `json:"leagueId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
