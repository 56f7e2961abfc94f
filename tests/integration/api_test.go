// Package integration drives the assembled HTTP stack end to end over the
// in-memory store: sign-in, role gating, idempotent creates.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rinkhq-backend/application/acl"
	"rinkhq-backend/application/auth"
	"rinkhq-backend/application/idempotency"
	"rinkhq-backend/infrastructure/config"
	"rinkhq-backend/infrastructure/messaging/eventbridge"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	"rinkhq-backend/infrastructure/persistence/repository"
	"rinkhq-backend/interfaces/http/rest"
	"rinkhq-backend/interfaces/http/rest/handlers"
	throttle "rinkhq-backend/pkg/auth"
	appErrors "rinkhq-backend/pkg/errors"
)

type captureMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *captureMailer) SendMagicLink(_ context.Context, _, linkURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, linkURL)
	return "test-message", nil
}

func (m *captureMailer) lastLink(t *testing.T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links)
	return m.links[len(m.links)-1]
}

func newTestServer(t *testing.T) (*httptest.Server, *captureMailer) {
	t.Helper()

	logger := zap.NewNop()
	store := kvstore.NewMemoryStore()
	mailer := &captureMailer{}

	leagues := repository.NewLeagueRepository(store, logger)
	acls := repository.NewACLRepository(store, logger)
	seasons := repository.NewSeasonRepository(store, logger)
	teams := repository.NewTeamRepository(store, logger)
	sessions := repository.NewSessionRepository(store, logger)
	games := repository.NewGameRepository(store, logger)
	goals := repository.NewGoalRepository(store, logger)
	rosters := repository.NewRosterRepository(store, logger)
	players := repository.NewPlayerRepository(store, logger)

	authenticator := auth.NewAuthenticator(
		repository.NewTokenRepository(store, logger),
		repository.NewAuthSessionRepository(store, logger),
		mailer,
		"http://app.test",
		logger,
	)
	guard := idempotency.NewGuard(repository.NewIdempotencyRepository(store, logger), logger)
	resolver := acl.NewResolver(acls, seasons, sessions, logger)
	errorHandler := appErrors.NewErrorHandler(logger, true)
	limiter := throttle.NewMemoryLimiter(100, time.Minute)
	bus := eventbridge.NopPublisher{}

	h := rest.Handlers{
		Auth:    handlers.NewAuthHandler(authenticator, limiter, errorHandler, false, logger),
		League:  handlers.NewLeagueHandler(leagues, bus, errorHandler, logger),
		Season:  handlers.NewSeasonHandler(seasons, errorHandler, logger),
		Team:    handlers.NewTeamHandler(teams, errorHandler, logger),
		Session: handlers.NewSessionHandler(sessions, errorHandler, logger),
		Game:    handlers.NewGameHandler(games, bus, errorHandler, logger),
		Goal:    handlers.NewGoalHandler(goals, bus, errorHandler, logger),
		Roster:  handlers.NewRosterHandler(rosters, errorHandler, logger),
		Player:  handlers.NewPlayerHandler(players, errorHandler, logger),
	}

	cfg := &config.Config{Environment: "development"}
	router := rest.NewRouter(cfg, h, authenticator, resolver, guard, errorHandler, logger)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv, mailer
}

// newClient returns an HTTP client with its own cookie jar, i.e. its own
// session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func signIn(t *testing.T, srv *httptest.Server, client *http.Client, mailer *captureMailer, email string) {
	t.Helper()

	resp := postJSON(t, client, srv.URL+"/auth/magic-link", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	link := mailer.lastLink(t)
	_, token, found := strings.Cut(link, "?token=")
	require.True(t, found, "mailed link should carry a token")

	callback, err := client.Get(srv.URL + "/auth/callback?token=" + token)
	require.NoError(t, err)
	defer callback.Body.Close()
	require.Equal(t, http.StatusOK, callback.StatusCode)
}

func postJSON(t *testing.T, client *http.Client, url string, payload interface{}, idempotencyKey string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestCallbackReturnsSessionDetails(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := newClient(t)

	resp := postJSON(t, client, srv.URL+"/auth/magic-link", map[string]string{"email": "captain@example.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	link := mailer.lastLink(t)
	_, token, found := strings.Cut(link, "?token=")
	require.True(t, found)

	callback, err := client.Get(srv.URL + "/auth/callback?token=" + token)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, callback.StatusCode)

	var session struct {
		Email     string `json:"email"`
		CreatedAt int64  `json:"createdAtEpoch"`
		ExpiresAt int64  `json:"expiresAtEpoch"`
		MaxAge    int    `json:"maxAgeSeconds"`
	}
	decodeBody(t, callback, &session)
	assert.Equal(t, "captain@example.com", session.Email)
	assert.InDelta(t, time.Now().Unix(), session.CreatedAt, 5)
	assert.Equal(t, int(auth.DefaultSessionTTL/time.Second), session.MaxAge)
	assert.Equal(t, session.CreatedAt+int64(session.MaxAge), session.ExpiresAt)
}

func TestSignInAndCreateLeague(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := newClient(t)
	signIn(t, srv, client, mailer, "captain@example.com")

	resp := postJSON(t, client, srv.URL+"/leagues", map[string]string{"name": "Sunday League"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var league struct {
		LeagueID string `json:"leagueId"`
		Name     string `json:"name"`
	}
	decodeBody(t, resp, &league)
	assert.NotEmpty(t, league.LeagueID)
	assert.Equal(t, "Sunday League", league.Name)

	listResp, err := client.Get(srv.URL + "/leagues")
	require.NoError(t, err)
	var listed []struct {
		LeagueID string `json:"leagueId"`
	}
	decodeBody(t, listResp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, league.LeagueID, listed[0].LeagueID)

	getResp, err := client.Get(srv.URL + "/leagues/" + league.LeagueID)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	resp := postJSON(t, client, srv.URL+"/leagues", map[string]string{"name": "No Session"}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSeasonCreationRequiresLeagueAdmin(t *testing.T) {
	srv, mailer := newTestServer(t)

	admin := newClient(t)
	signIn(t, srv, admin, mailer, "admin@example.com")

	resp := postJSON(t, admin, srv.URL+"/leagues", map[string]string{"name": "Gated League"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var league struct {
		LeagueID string `json:"leagueId"`
	}
	decodeBody(t, resp, &league)

	seasonPayload := map[string]string{"name": "Winter 2026"}
	seasonURL := fmt.Sprintf("%s/leagues/%s/seasons", srv.URL, league.LeagueID)

	// A signed-in stranger holds no grant on the league.
	stranger := newClient(t)
	signIn(t, srv, stranger, mailer, "stranger@example.com")
	forbidden := postJSON(t, stranger, seasonURL, seasonPayload, "")
	var errBody struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	decodeBody(t, forbidden, &errBody)
	assert.Equal(t, "forbidden", errBody.Error)
	assert.Equal(t, "admin_required", errBody.Code)

	created := postJSON(t, admin, seasonURL, seasonPayload, "")
	defer created.Body.Close()
	assert.Equal(t, http.StatusCreated, created.StatusCode)
}

func TestMissingScopeIs404(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := newClient(t)
	signIn(t, srv, client, mailer, "captain@example.com")

	resp := postJSON(t, client, srv.URL+"/seasons/no-such-season/sessions", map[string]string{"name": "Week 1"}, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errBody struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	decodeBody(t, resp, &errBody)
	assert.Equal(t, "not_found", errBody.Error)
	assert.Equal(t, "acl_scope_not_found", errBody.Code)
}

func TestIdempotentLeagueCreate(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := newClient(t)
	signIn(t, srv, client, mailer, "captain@example.com")

	payload := map[string]string{"name": "Replay League"}

	first := postJSON(t, client, srv.URL+"/leagues", payload, "create-1")
	require.Equal(t, http.StatusCreated, first.StatusCode)
	firstBody, err := io.ReadAll(first.Body)
	first.Body.Close()
	require.NoError(t, err)

	second := postJSON(t, client, srv.URL+"/leagues", payload, "create-1")
	require.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("Idempotency-Replayed"))
	secondBody, err := io.ReadAll(second.Body)
	second.Body.Close()
	require.NoError(t, err)
	assert.JSONEq(t, string(firstBody), string(secondBody))

	// Only one league was actually created.
	listResp, err := client.Get(srv.URL + "/leagues")
	require.NoError(t, err)
	var listed []struct {
		LeagueID string `json:"leagueId"`
	}
	decodeBody(t, listResp, &listed)
	assert.Len(t, listed, 1)

	// Reusing the key with a different payload is a conflict, not a replay.
	conflict := postJSON(t, client, srv.URL+"/leagues", map[string]string{"name": "Different"}, "create-1")
	require.Equal(t, http.StatusConflict, conflict.StatusCode)
	var errBody struct {
		Error string `json:"error"`
	}
	decodeBody(t, conflict, &errBody)
	assert.Equal(t, "idempotency_conflict", errBody.Error)
}

func TestMagicLinkThrottle(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	// The test server allows 100 starts per window; burn through them.
	var last int
	for i := 0; i < 101; i++ {
		resp := postJSON(t, client, srv.URL+"/auth/magic-link", map[string]string{"email": "burst@example.com"}, "")
		last = resp.StatusCode
		resp.Body.Close()
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
