package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

func newTestLogger() *zap.Logger {
	return zap.NewNop()
}

func TestCreateLeague_GrantsCreatorAdmin(t *testing.T) {
	store := kvstore.NewMemoryStore()
	leagues := NewLeagueRepository(store, newTestLogger())
	acls := NewACLRepository(store, newTestLogger())

	league, err := leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{
		Name:          "Sunday Night",
		CreatorUserID: "user-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, league.LeagueID)

	grant, err := acls.GetGrant(context.Background(), league.LeagueID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, domain.RoleAdmin, grant.Role)
	assert.Equal(t, league.CreatedAt, grant.CreatedAt)
}

func TestCreateLeague_RequiresNameAndCreator(t *testing.T) {
	store := kvstore.NewMemoryStore()
	leagues := NewLeagueRepository(store, newTestLogger())

	_, err := leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{CreatorUserID: "user-1"})
	assert.True(t, appErrors.IsValidation(err))

	_, err = leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{Name: "No Creator"})
	assert.True(t, appErrors.IsValidation(err))
}

func TestGetLeague_AbsentReturnsNil(t *testing.T) {
	store := kvstore.NewMemoryStore()
	leagues := NewLeagueRepository(store, newTestLogger())

	league, err := leagues.GetLeague(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, league)
}

func TestDeleteLeague_BlockedWhileSeasonsExist(t *testing.T) {
	store := kvstore.NewMemoryStore()
	leagues := NewLeagueRepository(store, newTestLogger())
	seasons := NewSeasonRepository(store, newTestLogger())

	league, err := leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{
		Name:          "Blocked",
		CreatorUserID: "user-1",
	})
	require.NoError(t, err)

	season, err := seasons.CreateSeason(context.Background(), ports.CreateSeasonInput{
		LeagueID: league.LeagueID,
		Name:     "Winter",
	})
	require.NoError(t, err)

	err = leagues.DeleteLeague(context.Background(), league.LeagueID)
	assert.True(t, appErrors.IsConflict(err))

	require.NoError(t, seasons.DeleteSeason(context.Background(), season.SeasonID))
	require.NoError(t, leagues.DeleteLeague(context.Background(), league.LeagueID))

	got, err := leagues.GetLeague(context.Background(), league.LeagueID)
	require.NoError(t, err)
	assert.Nil(t, got)
	// The creator grant row must go with the league.
	assert.Equal(t, 0, store.Len())
}

func TestDeleteLeague_AbsentIsNotFound(t *testing.T) {
	store := kvstore.NewMemoryStore()
	leagues := NewLeagueRepository(store, newTestLogger())

	err := leagues.DeleteLeague(context.Background(), "missing")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestListLeaguesForUser_SortedAndDeduplicated(t *testing.T) {
	store := kvstore.NewMemoryStore()
	leagues := NewLeagueRepository(store, newTestLogger())
	acls := NewACLRepository(store, newTestLogger())

	b, err := leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{Name: "Beta", CreatorUserID: "user-1"})
	require.NoError(t, err)
	a, err := leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{Name: "Alpha", CreatorUserID: "user-1"})
	require.NoError(t, err)
	_, err = leagues.CreateLeague(context.Background(), ports.CreateLeagueInput{Name: "Other", CreatorUserID: "user-2"})
	require.NoError(t, err)

	// A second grant on the same league must not duplicate the listing.
	_, err = acls.GrantRole(context.Background(), a.LeagueID, "user-1", domain.RoleScorekeeper)
	require.NoError(t, err)

	got, err := leagues.ListLeaguesForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.LeagueID, got[0].LeagueID)
	assert.Equal(t, b.LeagueID, got[1].LeagueID)
}

func TestGrantRole_RegrantKeepsCreatedAt(t *testing.T) {
	store := kvstore.NewMemoryStore()
	acls := NewACLRepository(store, newTestLogger())

	first, err := acls.GrantRole(context.Background(), "league-1", "user-9", domain.RoleViewer)
	require.NoError(t, err)

	second, err := acls.GrantRole(context.Background(), "league-1", "user-9", domain.RoleScorekeeper)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, domain.RoleScorekeeper, second.Role)

	got, err := acls.GetGrant(context.Background(), "league-1", "user-9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.RoleScorekeeper, got.Role)
}

func TestRevokeGrant_AbsentIsNoOp(t *testing.T) {
	store := kvstore.NewMemoryStore()
	acls := NewACLRepository(store, newTestLogger())

	require.NoError(t, acls.RevokeGrant(context.Background(), "league-1", "ghost"))
}

func TestSeasonDualWrite_ListedUnderLeague(t *testing.T) {
	store := kvstore.NewMemoryStore()
	seasons := NewSeasonRepository(store, newTestLogger())

	season, err := seasons.CreateSeason(context.Background(), ports.CreateSeasonInput{
		LeagueID: "league-1",
		Name:     "Spring",
		StartsOn: "2026-03-01",
		EndsOn:   "2026-05-31",
	})
	require.NoError(t, err)

	canonical, err := seasons.GetSeason(context.Background(), season.SeasonID)
	require.NoError(t, err)
	require.NotNil(t, canonical)
	assert.Equal(t, "Spring", canonical.Name)

	listed, err := seasons.ListSeasonsForLeague(context.Background(), "league-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, canonical.SeasonID, listed[0].SeasonID)
	assert.Equal(t, canonical.CreatedAt, listed[0].CreatedAt)
}

func TestDeleteSeason_BlockedWhileSessionsExist(t *testing.T) {
	store := kvstore.NewMemoryStore()
	seasons := NewSeasonRepository(store, newTestLogger())
	sessions := NewSessionRepository(store, newTestLogger())

	season, err := seasons.CreateSeason(context.Background(), ports.CreateSeasonInput{
		LeagueID: "league-1",
		Name:     "Fall",
	})
	require.NoError(t, err)

	_, err = sessions.CreateSession(context.Background(), ports.CreateSessionInput{
		SeasonID: season.SeasonID,
		Name:     "Week 1",
	})
	require.NoError(t, err)

	err = seasons.DeleteSeason(context.Background(), season.SeasonID)
	assert.True(t, appErrors.IsConflict(err))
}

func TestTeamsListedUnderSeason(t *testing.T) {
	store := kvstore.NewMemoryStore()
	teams := NewTeamRepository(store, newTestLogger())

	created, err := teams.CreateTeam(context.Background(), ports.CreateTeamInput{
		SeasonID: "season-1",
		Name:     "Red",
		Color:    "#ff0000",
	})
	require.NoError(t, err)

	got, err := teams.GetTeam(context.Background(), "season-1", created.TeamID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Red", got.Name)

	listed, err := teams.ListTeamsForSeason(context.Background(), "season-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSessionDualWrite_ListedUnderSeason(t *testing.T) {
	store := kvstore.NewMemoryStore()
	sessions := NewSessionRepository(store, newTestLogger())

	created, err := sessions.CreateSession(context.Background(), ports.CreateSessionInput{
		SeasonID: "season-1",
		Name:     "Week 2",
		Date:     "2026-04-12",
	})
	require.NoError(t, err)

	canonical, err := sessions.GetSession(context.Background(), created.SessionID)
	require.NoError(t, err)
	require.NotNil(t, canonical)

	listed, err := sessions.ListSessionsForSeason(context.Background(), "season-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, canonical.SessionID, listed[0].SessionID)
}

func TestCreatePlayer_RoundTrip(t *testing.T) {
	store := kvstore.NewMemoryStore()
	players := NewPlayerRepository(store, newTestLogger())

	created, err := players.CreatePlayer(context.Background(), ports.CreatePlayerInput{
		FullName: "Sam Hughes",
		Email:    "sam@example.com",
	})
	require.NoError(t, err)

	got, err := players.GetPlayer(context.Background(), created.PlayerID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.FullName, got.FullName)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}
