// Package ports declares the interfaces the application layer depends on;
// infrastructure supplies the implementations.
package ports

import (
	"context"
	"time"

	"rinkhq-backend/domain"
)

// CreateLeagueInput carries the fields for a new league. The creator is
// granted the admin role on the league in the same operation.
type CreateLeagueInput struct {
	Name          string
	CreatorUserID string
}

// LeagueRepository persists leagues and the derived league listings.
type LeagueRepository interface {
	CreateLeague(ctx context.Context, input CreateLeagueInput) (*domain.League, error)

	// GetLeague returns nil when the league does not exist.
	GetLeague(ctx context.Context, leagueID string) (*domain.League, error)

	// DeleteLeague fails with a conflict while seasons exist under the
	// league. It removes every ACL grant row before the league record.
	DeleteLeague(ctx context.Context, leagueID string) error

	// ListLeaguesForUser scans all grant rows, filters by user and returns
	// the user's leagues sorted by name.
	ListLeaguesForUser(ctx context.Context, userID string) ([]domain.League, error)
}

// ACLRepository persists per-league role grants.
type ACLRepository interface {
	GrantRole(ctx context.Context, leagueID, userID string, role domain.Role) (*domain.Grant, error)
	GetGrant(ctx context.Context, leagueID, userID string) (*domain.Grant, error)
	ListGrantsForLeague(ctx context.Context, leagueID string) ([]domain.Grant, error)
	RevokeGrant(ctx context.Context, leagueID, userID string) error
}

// CreateSeasonInput carries the fields for a new season.
type CreateSeasonInput struct {
	LeagueID string
	Name     string
	StartsOn string
	EndsOn   string
}

// SeasonRepository persists seasons as a canonical record plus a
// denormalized by-league copy.
type SeasonRepository interface {
	CreateSeason(ctx context.Context, input CreateSeasonInput) (*domain.Season, error)
	GetSeason(ctx context.Context, seasonID string) (*domain.Season, error)
	ListSeasonsForLeague(ctx context.Context, leagueID string) ([]domain.Season, error)

	// DeleteSeason fails with a conflict while sessions exist under the
	// season.
	DeleteSeason(ctx context.Context, seasonID string) error
}

// CreateTeamInput carries the fields for a new team.
type CreateTeamInput struct {
	SeasonID string
	Name     string
	Color    string
}

// TeamRepository persists teams under their season.
type TeamRepository interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*domain.Team, error)
	GetTeam(ctx context.Context, seasonID, teamID string) (*domain.Team, error)
	ListTeamsForSeason(ctx context.Context, seasonID string) ([]domain.Team, error)
}

// CreateSessionInput carries the fields for a new session.
type CreateSessionInput struct {
	SeasonID string
	Name     string
	Date     string
}

// SessionRepository persists sessions as a canonical record plus a
// denormalized by-season copy.
type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*domain.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ListSessionsForSeason(ctx context.Context, seasonID string) ([]domain.Session, error)
}

// CreateGameInput carries the fields for a new game.
type CreateGameInput struct {
	SessionID  string
	HomeTeamID string
	AwayTeamID string
	StartTime  time.Time
}

// UpdateGameInput carries the optional fields of a game update. At least one
// must be set.
type UpdateGameInput struct {
	Status    *domain.GameStatus
	StartTime *time.Time
}

// GameRepository persists games and keeps the session-to-game index in
// lockstep with the canonical record.
type GameRepository interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*domain.Game, error)
	GetGame(ctx context.Context, gameID string) (*domain.Game, error)

	// ListGamesForSession returns games ordered by start time, then game id.
	ListGamesForSession(ctx context.Context, sessionID string) ([]domain.Game, error)

	UpdateGame(ctx context.Context, gameID string, input UpdateGameInput) (*domain.Game, error)

	// DeleteGame reports whether the game existed and whether removing it
	// emptied and therefore removed its session.
	DeleteGame(ctx context.Context, gameID string) (deleted bool, sessionRemoved bool, err error)
}

// CreatePlayerInput carries the fields for a new player.
type CreatePlayerInput struct {
	FullName string
	Email    string
}

// PlayerRepository persists player profiles.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*domain.Player, error)
	GetPlayer(ctx context.Context, playerID string) (*domain.Player, error)
}

// AssignRosterInput carries the fields of a roster assignment.
type AssignRosterInput struct {
	GameID       string
	TeamID       string
	PlayerID     string
	JerseyNumber int
}

// RosterRepository persists per-game roster assignments.
type RosterRepository interface {
	AssignToRoster(ctx context.Context, input AssignRosterInput) (*domain.RosterAssignment, error)
	ListRoster(ctx context.Context, gameID string) ([]domain.RosterAssignment, error)
	RemoveFromRoster(ctx context.Context, gameID, teamID, playerID string) error
}

// RecordGoalInput carries the fields of a goal event.
type RecordGoalInput struct {
	GameID          string
	Third           int
	Minute          int
	ScorerPlayerID  string
	AssistPlayerIDs []string
	OwnGoal         bool
	ScoringTeamID   string
}

// GoalRepository persists goal events in timeline order.
type GoalRepository interface {
	RecordGoal(ctx context.Context, input RecordGoalInput) (*domain.GoalEvent, error)
	ListGoalEvents(ctx context.Context, gameID string) ([]domain.GoalEvent, error)
}

// IdempotencyStore persists the immutable per-(scope, key) mutation records.
type IdempotencyStore interface {
	// GetRecord returns nil when no record exists.
	GetRecord(ctx context.Context, scope, key string) (*domain.IdempotencyRecord, error)

	// CreateRecord writes the record only if none exists yet, failing with
	// a conflict when a concurrent request already created one.
	CreateRecord(ctx context.Context, record domain.IdempotencyRecord) error
}

// TokenStore persists magic-link tokens and redeems them with a single
// conditional update.
type TokenStore interface {
	// CreateToken writes the token only if the token id is unused. An
	// existing id is a hard failure, not retried.
	CreateToken(ctx context.Context, token domain.MagicToken) error

	// RedeemToken marks the token used, succeeding only when the stored
	// hash matches, the token is unused and not yet expired. All three
	// failures are indistinguishable.
	RedeemToken(ctx context.Context, tokenID, tokenHash string, now time.Time) (*domain.MagicToken, error)
}

// SessionStore persists auth sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.AuthSession) error

	// GetSession returns nil for a missing or mistyped record; expiry is
	// the authenticator's concern.
	GetSession(ctx context.Context, sessionID string) (*domain.AuthSession, error)

	DeleteSession(ctx context.Context, sessionID string) error
}

// Mailer delivers the magic-link email.
type Mailer interface {
	// SendMagicLink returns the provider's message id.
	SendMagicLink(ctx context.Context, email, linkURL string) (string, error)
}
