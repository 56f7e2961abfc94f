package domain

import (
	"fmt"
	"time"

	"rinkhq-backend/pkg/errors"
)

// MaxAssists is the most assists a single goal can credit.
const MaxAssists = 3

// GoalEvent records a goal inside a game. Its sort key embeds (third,
// zero-padded minute, eventId) so a prefix query returns the timeline in
// chronological order.
type GoalEvent struct {
	EventID         string    `json:"eventId"`
	GameID          string    `json:"gameId"`
	Third           int       `json:"third"`
	Minute          int       `json:"minute"`
	ScorerPlayerID  string    `json:"scorerPlayerId"`
	AssistPlayerIDs []string  `json:"assistPlayerIds,omitempty"`
	OwnGoal         bool      `json:"ownGoal"`
	ScoringTeamID   string    `json:"scoringTeamId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate checks the invariants the store cannot enforce: assist list
// rules and the own-goal / scoring-team exclusivity.
func (g *GoalEvent) Validate() error {
	if g.GameID == "" {
		return errors.NewValidationError("gameId is required")
	}
	if g.ScorerPlayerID == "" {
		return errors.NewValidationError("scorerPlayerId is required")
	}
	if g.Third < 1 || g.Third > 3 {
		return errors.NewValidationError("third must be between 1 and 3")
	}
	if g.Minute < 0 || g.Minute > 9999 {
		return errors.NewValidationError("minute is out of range")
	}

	if len(g.AssistPlayerIDs) > MaxAssists {
		return errors.NewValidationError(fmt.Sprintf("at most %d assists are allowed", MaxAssists))
	}
	seen := make(map[string]bool, len(g.AssistPlayerIDs))
	for _, assist := range g.AssistPlayerIDs {
		if assist == "" {
			return errors.NewValidationError("assist player id must not be empty")
		}
		if assist == g.ScorerPlayerID {
			return errors.NewValidationError("scorer cannot assist their own goal")
		}
		if seen[assist] {
			return errors.NewValidationError("duplicate assist player id: " + assist)
		}
		seen[assist] = true
	}

	// Exactly one of {ownGoal, scoringTeamId} identifies the credited side.
	if g.OwnGoal && g.ScoringTeamID != "" {
		return errors.NewValidationError("an own goal cannot carry a scoringTeamId")
	}
	if !g.OwnGoal && g.ScoringTeamID == "" {
		return errors.NewValidationError("scoringTeamId is required unless ownGoal is set")
	}

	return nil
}
