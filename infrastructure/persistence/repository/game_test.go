package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

func mustCreateGame(t *testing.T, games *GameRepository, sessionID string, start time.Time) *domain.Game {
	t.Helper()
	game, err := games.CreateGame(context.Background(), ports.CreateGameInput{
		SessionID:  sessionID,
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		StartTime:  start,
	})
	require.NoError(t, err)
	return game
}

func TestCreateGame_Validation(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())
	start := time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC)

	_, err := games.CreateGame(context.Background(), ports.CreateGameInput{
		HomeTeamID: "a", AwayTeamID: "b", StartTime: start,
	})
	assert.True(t, appErrors.IsValidation(err))

	_, err = games.CreateGame(context.Background(), ports.CreateGameInput{
		SessionID: "s", HomeTeamID: "a", AwayTeamID: "a", StartTime: start,
	})
	assert.True(t, appErrors.IsValidation(err))

	_, err = games.CreateGame(context.Background(), ports.CreateGameInput{
		SessionID: "s", HomeTeamID: "a", AwayTeamID: "b",
	})
	assert.True(t, appErrors.IsValidation(err))
}

func TestCreateGame_NewGamesStartScheduled(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	game := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))
	assert.Equal(t, domain.GameStatusScheduled, game.Status)

	got, err := games.GetGame(context.Background(), game.GameID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, game.StartTime, got.StartTime)
}

func TestListGamesForSession_ChronologicalOrder(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	late := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 21, 0, 0, 0, time.UTC))
	early := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))
	middle := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 20, 0, 0, 0, time.UTC))

	listed, err := games.ListGamesForSession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, early.GameID, listed[0].GameID)
	assert.Equal(t, middle.GameID, listed[1].GameID)
	assert.Equal(t, late.GameID, listed[2].GameID)
}

func TestUpdateGame_RequiresAField(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	_, err := games.UpdateGame(context.Background(), "any", ports.UpdateGameInput{})
	assert.True(t, appErrors.IsValidation(err))
}

func TestUpdateGame_RescheduleMovesIndexEntry(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	game := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))
	other := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 20, 0, 0, 0, time.UTC))

	newStart := time.Date(2026, 4, 12, 22, 0, 0, 0, time.UTC)
	updated, err := games.UpdateGame(context.Background(), game.GameID, ports.UpdateGameInput{
		StartTime: &newStart,
	})
	require.NoError(t, err)
	assert.True(t, updated.StartTime.Equal(newStart))

	listed, err := games.ListGamesForSession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// The rescheduled game now sorts after the other one; no stale entry
	// remains at the old slot.
	assert.Equal(t, other.GameID, listed[0].GameID)
	assert.Equal(t, game.GameID, listed[1].GameID)
}

func TestUpdateGame_StatusTransition(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	game := mustCreateGame(t, games, "session-1", time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))

	final := domain.GameStatusFinal
	updated, err := games.UpdateGame(context.Background(), game.GameID, ports.UpdateGameInput{Status: &final})
	require.NoError(t, err)
	assert.Equal(t, domain.GameStatusFinal, updated.Status)

	// The index copy must carry the new status too.
	listed, err := games.ListGamesForSession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.GameStatusFinal, listed[0].Status)
}

func TestUpdateGame_UnknownStatusRejected(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	bogus := domain.GameStatus("cancelled")
	_, err := games.UpdateGame(context.Background(), "any", ports.UpdateGameInput{Status: &bogus})
	assert.True(t, appErrors.IsValidation(err))
}

func TestUpdateGame_AbsentIsNotFound(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	final := domain.GameStatusFinal
	_, err := games.UpdateGame(context.Background(), "missing", ports.UpdateGameInput{Status: &final})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestDeleteGame_LastGameRemovesSession(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())
	sessions := NewSessionRepository(store, newTestLogger())

	session, err := sessions.CreateSession(context.Background(), ports.CreateSessionInput{
		SeasonID: "season-1",
		Name:     "Week 3",
	})
	require.NoError(t, err)

	first := mustCreateGame(t, games, session.SessionID, time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))
	second := mustCreateGame(t, games, session.SessionID, time.Date(2026, 4, 12, 20, 0, 0, 0, time.UTC))

	deleted, sessionRemoved, err := games.DeleteGame(context.Background(), first.GameID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, sessionRemoved)

	deleted, sessionRemoved, err = games.DeleteGame(context.Background(), second.GameID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, sessionRemoved)

	gone, err := sessions.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	listed, err := sessions.ListSessionsForSeason(context.Background(), "season-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDeleteGame_AbsentIsNoOp(t *testing.T) {
	store := kvstore.NewMemoryStore()
	games := NewGameRepository(store, newTestLogger())

	deleted, sessionRemoved, err := games.DeleteGame(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.False(t, sessionRemoved)
}

func TestRecordGoal_TimelineOrder(t *testing.T) {
	store := kvstore.NewMemoryStore()
	goals := NewGoalRepository(store, newTestLogger())

	record := func(third, minute int) {
		t.Helper()
		_, err := goals.RecordGoal(context.Background(), ports.RecordGoalInput{
			GameID:         "game-1",
			Third:          third,
			Minute:         minute,
			ScorerPlayerID: "player-1",
			ScoringTeamID:  "team-1",
		})
		require.NoError(t, err)
	}

	record(2, 5)
	record(1, 12)
	record(1, 3)
	record(3, 1)

	listed, err := goals.ListGoalEvents(context.Background(), "game-1")
	require.NoError(t, err)
	require.Len(t, listed, 4)
	assert.Equal(t, []int{1, 1, 2, 3}, []int{listed[0].Third, listed[1].Third, listed[2].Third, listed[3].Third})
	assert.Equal(t, 3, listed[0].Minute)
	assert.Equal(t, 12, listed[1].Minute)
}

func TestRecordGoal_InvariantViolationsRejected(t *testing.T) {
	store := kvstore.NewMemoryStore()
	goals := NewGoalRepository(store, newTestLogger())

	cases := []struct {
		name  string
		input ports.RecordGoalInput
	}{
		{"missing scorer", ports.RecordGoalInput{GameID: "g", Third: 1, ScoringTeamID: "t"}},
		{"bad third", ports.RecordGoalInput{GameID: "g", Third: 4, ScorerPlayerID: "p", ScoringTeamID: "t"}},
		{"too many assists", ports.RecordGoalInput{
			GameID: "g", Third: 1, ScorerPlayerID: "p", ScoringTeamID: "t",
			AssistPlayerIDs: []string{"a", "b", "c", "d"},
		}},
		{"scorer assists self", ports.RecordGoalInput{
			GameID: "g", Third: 1, ScorerPlayerID: "p", ScoringTeamID: "t",
			AssistPlayerIDs: []string{"p"},
		}},
		{"duplicate assist", ports.RecordGoalInput{
			GameID: "g", Third: 1, ScorerPlayerID: "p", ScoringTeamID: "t",
			AssistPlayerIDs: []string{"a", "a"},
		}},
		{"own goal with scoring team", ports.RecordGoalInput{
			GameID: "g", Third: 1, ScorerPlayerID: "p", OwnGoal: true, ScoringTeamID: "t",
		}},
		{"neither own goal nor scoring team", ports.RecordGoalInput{
			GameID: "g", Third: 1, ScorerPlayerID: "p",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := goals.RecordGoal(context.Background(), tc.input)
			assert.True(t, appErrors.IsValidation(err))
		})
	}
}

func TestRoster_AssignListRemove(t *testing.T) {
	store := kvstore.NewMemoryStore()
	rosters := NewRosterRepository(store, newTestLogger())

	_, err := rosters.AssignToRoster(context.Background(), ports.AssignRosterInput{
		GameID: "game-1", TeamID: "team-b", PlayerID: "player-2", JerseyNumber: 9,
	})
	require.NoError(t, err)
	_, err = rosters.AssignToRoster(context.Background(), ports.AssignRosterInput{
		GameID: "game-1", TeamID: "team-a", PlayerID: "player-1", JerseyNumber: 4,
	})
	require.NoError(t, err)

	listed, err := rosters.ListRoster(context.Background(), "game-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Sort-key order groups assignments by team.
	assert.Equal(t, "team-a", listed[0].TeamID)
	assert.Equal(t, "team-b", listed[1].TeamID)

	require.NoError(t, rosters.RemoveFromRoster(context.Background(), "game-1", "team-a", "player-1"))
	listed, err = rosters.ListRoster(context.Background(), "game-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestRoster_ReassignKeepsCreatedAt(t *testing.T) {
	store := kvstore.NewMemoryStore()
	rosters := NewRosterRepository(store, newTestLogger())

	first, err := rosters.AssignToRoster(context.Background(), ports.AssignRosterInput{
		GameID: "game-1", TeamID: "team-a", PlayerID: "player-1", JerseyNumber: 4,
	})
	require.NoError(t, err)

	second, err := rosters.AssignToRoster(context.Background(), ports.AssignRosterInput{
		GameID: "game-1", TeamID: "team-a", PlayerID: "player-1", JerseyNumber: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 7, second.JerseyNumber)
}
