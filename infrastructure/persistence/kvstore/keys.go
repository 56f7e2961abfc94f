package kvstore

import (
	"fmt"
	"time"
)

// Key derivation for the single-table layout. Every "list children of X"
// access pattern puts X's id in the partition key and a type-prefixed child
// id in the sort key, so a prefix query yields the children in the desired
// order. Entities that are reachable from two parents (games) get a
// canonical record plus an index record kept in lockstep by the repository.

const (
	SortKeyMetadata = "METADATA"
	SortKeyProfile  = "PROFILE"

	SeasonPrefix    = "SEASON#"
	TeamPrefix      = "TEAM#"
	SessionPrefix   = "SESSION#"
	GamePrefix      = "GAME#"
	ACLPrefix       = "ACL#USER#"
	RosterPrefix    = "ROSTER#"
	GoalPrefix      = "GOAL#"
)

// LeaguePK returns the partition key for a league and its children.
func LeaguePK(leagueID string) string {
	return "LEAGUE#" + leagueID
}

// SeasonPK returns the partition key for a season's canonical record and
// its children.
func SeasonPK(seasonID string) string {
	return "SEASON#" + seasonID
}

// SessionPK returns the partition key for a session's canonical record and
// its game index.
func SessionPK(sessionID string) string {
	return "SESSION#" + sessionID
}

// GamePK returns the partition key for a game's canonical record, rosters
// and goal events.
func GamePK(gameID string) string {
	return "GAME#" + gameID
}

// PlayerPK returns the partition key for a player profile.
func PlayerPK(playerID string) string {
	return "PLAYER#" + playerID
}

// MagicTokenPK returns the partition key for a magic-link token record.
func MagicTokenPK(tokenID string) string {
	return "AUTH_MAGIC#" + tokenID
}

// AuthSessionPK returns the partition key for an auth session record.
func AuthSessionPK(sessionID string) string {
	return "AUTH_SESSION#" + sessionID
}

// IdempotencyPK returns the partition key for an idempotency record. The
// scope already encodes caller and route; the client-supplied key joins it
// so uniqueness holds per (scope, key).
func IdempotencyPK(scope, key string) string {
	return "IDEMPOTENCY#" + scope + "#" + key
}

// SeasonSK returns the sort key for a season's denormalized by-league copy.
func SeasonSK(seasonID string) string {
	return SeasonPrefix + seasonID
}

// TeamSK returns the sort key for a team under its season.
func TeamSK(teamID string) string {
	return TeamPrefix + teamID
}

// SessionSK returns the sort key for a session's denormalized by-season copy.
func SessionSK(sessionID string) string {
	return SessionPrefix + sessionID
}

// ACLSK returns the sort key for a league ACL grant.
func ACLSK(userID string) string {
	return ACLPrefix + userID
}

// RosterSK returns the sort key for a roster assignment under its game.
func RosterSK(teamID, playerID string) string {
	return RosterPrefix + teamID + "#" + playerID
}

// GameIndexSK returns the sort key for the session-to-game index entry. The
// start timestamp is normalized to UTC RFC3339 so the lexical sort-key order
// is chronological; the game id breaks ties.
func GameIndexSK(startTime time.Time, gameID string) string {
	return GamePrefix + startTime.UTC().Format(time.RFC3339) + "#" + gameID
}

// GoalSK returns the sort key for a goal event under its game. The minute is
// zero-padded to four digits so a prefix query yields the timeline in
// (third, minute, eventId) order.
func GoalSK(third, minute int, eventID string) string {
	return fmt.Sprintf("%s%d#%04d#%s", GoalPrefix, third, minute, eventID)
}
