package acl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	"rinkhq-backend/infrastructure/persistence/repository"
	appErrors "rinkhq-backend/pkg/errors"
)

type fixture struct {
	resolver *Resolver
	acls     *repository.ACLRepository
	seasons  *repository.SeasonRepository
	sessions *repository.SessionRepository
	leagues  *repository.LeagueRepository
}

func newFixture() *fixture {
	store := kvstore.NewMemoryStore()
	logger := zap.NewNop()
	acls := repository.NewACLRepository(store, logger)
	seasons := repository.NewSeasonRepository(store, logger)
	sessions := repository.NewSessionRepository(store, logger)
	return &fixture{
		resolver: NewResolver(acls, seasons, sessions, logger),
		acls:     acls,
		seasons:  seasons,
		sessions: sessions,
		leagues:  repository.NewLeagueRepository(store, logger),
	}
}

func TestResolveRoute_MatchesOnlyGatedRoutes(t *testing.T) {
	cases := []struct {
		method, path string
		want         *RouteMatch
	}{
		{"POST", "/leagues", &RouteMatch{Operation: OpCreateLeague}},
		{"POST", "/leagues/l1/seasons", &RouteMatch{Operation: OpCreateSeason, Scope: Scope{LeagueID: "l1"}}},
		{"POST", "/seasons/s1/sessions", &RouteMatch{Operation: OpCreateSession, Scope: Scope{SeasonID: "s1"}}},
		{"POST", "/sessions/x1/games", &RouteMatch{Operation: OpCreateGame, Scope: Scope{SessionID: "x1"}}},

		{"GET", "/leagues", nil},
		{"POST", "/leagues/l1", nil},
		{"POST", "/games", nil},
		{"POST", "/leagues//seasons", nil},
		{"POST", "/", nil},
		{"DELETE", "/leagues/l1/seasons", nil},
	}
	for _, tc := range cases {
		got := ResolveRoute(tc.method, tc.path)
		assert.Equal(t, tc.want, got, "%s %s", tc.method, tc.path)
	}
}

func TestAuthorize_UngatedRoutePassesThrough(t *testing.T) {
	f := newFixture()

	scope, err := f.resolver.Authorize(context.Background(), "GET", "/leagues", "user-1")
	require.NoError(t, err)
	assert.Nil(t, scope)
}

func TestAuthorize_CreateLeagueAlwaysAllowed(t *testing.T) {
	f := newFixture()

	scope, err := f.resolver.Authorize(context.Background(), "POST", "/leagues", "user-with-no-grants")
	require.NoError(t, err)
	require.NotNil(t, scope)
	assert.Empty(t, scope.LeagueID)
}

func TestAuthorize_CreateSeasonRequiresAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	league, err := f.leagues.CreateLeague(ctx, ports.CreateLeagueInput{Name: "L", CreatorUserID: "admin-user"})
	require.NoError(t, err)
	_, err = f.acls.GrantRole(ctx, league.LeagueID, "viewer-user", domain.RoleViewer)
	require.NoError(t, err)

	scope, err := f.resolver.Authorize(ctx, "POST", "/leagues/"+league.LeagueID+"/seasons", "admin-user")
	require.NoError(t, err)
	assert.Equal(t, league.LeagueID, scope.LeagueID)

	for _, user := range []string{"viewer-user", "stranger"} {
		_, err = f.resolver.Authorize(ctx, "POST", "/leagues/"+league.LeagueID+"/seasons", user)
		require.Error(t, err, "user %s", user)
		assert.True(t, appErrors.IsForbidden(err))
		appErr, ok := err.(*appErrors.AppError)
		require.True(t, ok)
		assert.Equal(t, appErrors.CodeAdminRequired, appErr.Code)
	}
}

func TestAuthorize_CreateSessionWalksToLeague(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	league, err := f.leagues.CreateLeague(ctx, ports.CreateLeagueInput{Name: "L", CreatorUserID: "admin-user"})
	require.NoError(t, err)
	season, err := f.seasons.CreateSeason(ctx, ports.CreateSeasonInput{LeagueID: league.LeagueID, Name: "S"})
	require.NoError(t, err)

	scope, err := f.resolver.Authorize(ctx, "POST", "/seasons/"+season.SeasonID+"/sessions", "admin-user")
	require.NoError(t, err)
	assert.Equal(t, league.LeagueID, scope.LeagueID)
	assert.Equal(t, season.SeasonID, scope.SeasonID)
}

func TestAuthorize_CreateSessionMissingSeasonIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.resolver.Authorize(context.Background(), "POST", "/seasons/ghost/sessions", "user-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
	appErr, ok := err.(*appErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeACLScopeNotFound, appErr.Code)
}

func TestAuthorize_CreateGameWalksFullChain(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	league, err := f.leagues.CreateLeague(ctx, ports.CreateLeagueInput{Name: "L", CreatorUserID: "admin-user"})
	require.NoError(t, err)
	season, err := f.seasons.CreateSeason(ctx, ports.CreateSeasonInput{LeagueID: league.LeagueID, Name: "S"})
	require.NoError(t, err)
	session, err := f.sessions.CreateSession(ctx, ports.CreateSessionInput{SeasonID: season.SeasonID, Name: "W1"})
	require.NoError(t, err)

	scope, err := f.resolver.Authorize(ctx, "POST", "/sessions/"+session.SessionID+"/games", "admin-user")
	require.NoError(t, err)
	assert.Equal(t, league.LeagueID, scope.LeagueID)
	assert.Equal(t, season.SeasonID, scope.SeasonID)
	assert.Equal(t, session.SessionID, scope.SessionID)
}

func TestAuthorize_CreateGameBrokenChainIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Missing session.
	_, err := f.resolver.Authorize(ctx, "POST", "/sessions/ghost/games", "user-1")
	assert.True(t, appErrors.IsNotFound(err))

	// Session whose season is gone.
	session, err := f.sessions.CreateSession(ctx, ports.CreateSessionInput{SeasonID: "dangling-season", Name: "W1"})
	require.NoError(t, err)
	_, err = f.resolver.Authorize(ctx, "POST", "/sessions/"+session.SessionID+"/games", "user-1")
	assert.True(t, appErrors.IsNotFound(err))
}
