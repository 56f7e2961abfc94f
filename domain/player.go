package domain

import "time"

// Player is a person who can appear on game rosters.
type Player struct {
	PlayerID  string    `json:"playerId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RosterAssignment places a player on a team for one game.
type RosterAssignment struct {
	GameID       string    `json:"gameId"`
	TeamID       string    `json:"teamId"`
	PlayerID     string    `json:"playerId"`
	JerseyNumber int       `json:"jerseyNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
