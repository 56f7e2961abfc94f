// Package events defines the domain events published after successful
// mutations.
package events

import "time"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// LeagueCreated is raised when a new league is created.
type LeagueCreated struct {
	BaseEvent
	LeagueID string `json:"league_id"`
	UserID   string `json:"user_id"`
}

// NewLeagueCreated creates a LeagueCreated event
func NewLeagueCreated(leagueID, userID string, timestamp time.Time) LeagueCreated {
	return LeagueCreated{
		BaseEvent: BaseEvent{
			AggregateID: leagueID,
			EventType:   "league.created",
			Timestamp:   timestamp,
		},
		LeagueID: leagueID,
		UserID:   userID,
	}
}

// GameScheduled is raised when a game is created under a session.
type GameScheduled struct {
	BaseEvent
	GameID    string `json:"game_id"`
	SessionID string `json:"session_id"`
}

// NewGameScheduled creates a GameScheduled event
func NewGameScheduled(gameID, sessionID string, timestamp time.Time) GameScheduled {
	return GameScheduled{
		BaseEvent: BaseEvent{
			AggregateID: gameID,
			EventType:   "game.scheduled",
			Timestamp:   timestamp,
		},
		GameID:    gameID,
		SessionID: sessionID,
	}
}

// GameUpdated is raised when a game's status or start time changes.
type GameUpdated struct {
	BaseEvent
	GameID    string `json:"game_id"`
	SessionID string `json:"session_id"`
}

// NewGameUpdated creates a GameUpdated event
func NewGameUpdated(gameID, sessionID string, timestamp time.Time) GameUpdated {
	return GameUpdated{
		BaseEvent: BaseEvent{
			AggregateID: gameID,
			EventType:   "game.updated",
			Timestamp:   timestamp,
		},
		GameID:    gameID,
		SessionID: sessionID,
	}
}

// GameDeleted is raised when a game is removed.
type GameDeleted struct {
	BaseEvent
	GameID         string `json:"game_id"`
	SessionID      string `json:"session_id"`
	SessionRemoved bool   `json:"session_removed"`
}

// NewGameDeleted creates a GameDeleted event
func NewGameDeleted(gameID, sessionID string, sessionRemoved bool, timestamp time.Time) GameDeleted {
	return GameDeleted{
		BaseEvent: BaseEvent{
			AggregateID: gameID,
			EventType:   "game.deleted",
			Timestamp:   timestamp,
		},
		GameID:         gameID,
		SessionID:      sessionID,
		SessionRemoved: sessionRemoved,
	}
}

// GoalRecorded is raised when a goal event is written to a game timeline.
type GoalRecorded struct {
	BaseEvent
	EventID string `json:"event_id"`
	GameID  string `json:"game_id"`
	OwnGoal bool   `json:"own_goal"`
}

// NewGoalRecorded creates a GoalRecorded event
func NewGoalRecorded(eventID, gameID string, ownGoal bool, timestamp time.Time) GoalRecorded {
	return GoalRecorded{
		BaseEvent: BaseEvent{
			AggregateID: gameID,
			EventType:   "goal.recorded",
			Timestamp:   timestamp,
		},
		EventID: eventID,
		GameID:  gameID,
		OwnGoal: ownGoal,
	}
}
