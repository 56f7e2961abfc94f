package domain

import "time"

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinal      GameStatus = "final"
)

// Valid reports whether s is a known game status.
func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusScheduled, GameStatusInProgress, GameStatusFinal:
		return true
	}
	return false
}

// Session is a block of games on a single date, belonging to a season. Like
// seasons it carries a canonical record plus a denormalized by-season copy.
type Session struct {
	SessionID string    `json:"sessionId"`
	SeasonID  string    `json:"seasonId"`
	Name      string    `json:"name"`
	Date      string    `json:"date,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Game is the unit of play. The canonical record lives under the game's own
// partition; a session index entry whose sort key embeds the start time
// gives the chronological by-session listing.
type Game struct {
	GameID     string     `json:"gameId"`
	SessionID  string     `json:"sessionId"`
	HomeTeamID string     `json:"homeTeamId"`
	AwayTeamID string     `json:"awayTeamId"`
	StartTime  time.Time  `json:"gameStartTs"`
	Status     GameStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
