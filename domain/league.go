// Package domain holds the persisted entity types of the league scheduler
// and the invariants the store cannot express.
package domain

import "time"

// League is the root entity. Roles are granted per league; seasons hang off
// it.
type League struct {
	LeagueID  string    `json:"leagueId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Season belongs to a league. It is persisted twice: a canonical record
// under its own partition and a denormalized copy under the league, kept in
// lockstep by the repository.
type Season struct {
	SeasonID  string    `json:"seasonId"`
	LeagueID  string    `json:"leagueId"`
	Name      string    `json:"name"`
	StartsOn  string    `json:"startsOn,omitempty"`
	EndsOn    string    `json:"endsOn,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Team belongs to a season.
type Team struct {
	TeamID    string    `json:"teamId"`
	SeasonID  string    `json:"seasonId"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
