// Package acl authorizes nested league mutations. Four create routes are
// gated; everything else passes through. The resolver walks the entity chain
// up to the owning league and requires the caller's admin grant on it.
package acl

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	appErrors "rinkhq-backend/pkg/errors"
)

// Operation names a gated mutation.
type Operation string

const (
	OpCreateLeague  Operation = "createLeague"
	OpCreateSeason  Operation = "createSeason"
	OpCreateSession Operation = "createSession"
	OpCreateGame    Operation = "createGame"
)

// Scope is the resolved entity chain a mutation acts under. Fields are
// filled as far as the route reaches; handlers reuse them instead of
// re-deriving the chain.
type Scope struct {
	LeagueID  string
	SeasonID  string
	SessionID string
}

// RouteMatch is the outcome of matching a request against the gated routes.
type RouteMatch struct {
	Operation Operation
	Scope     Scope
}

// Resolver authorizes the gated mutations.
type Resolver struct {
	acls     ports.ACLRepository
	seasons  ports.SeasonRepository
	sessions ports.SessionRepository
	logger   *zap.Logger
}

// NewResolver creates an ACL scope resolver.
func NewResolver(acls ports.ACLRepository, seasons ports.SeasonRepository, sessions ports.SessionRepository, logger *zap.Logger) *Resolver {
	return &Resolver{acls: acls, seasons: seasons, sessions: sessions, logger: logger}
}

// ResolveRoute matches (method, path) against the four gated routes. It is a
// pure function; nil means the route is not gated here.
func ResolveRoute(method, path string) *RouteMatch {
	if method != "POST" {
		return nil
	}
	segments := splitPath(path)

	switch {
	case len(segments) == 1 && segments[0] == "leagues":
		return &RouteMatch{Operation: OpCreateLeague}
	case len(segments) == 3 && segments[0] == "leagues" && segments[2] == "seasons" && segments[1] != "":
		return &RouteMatch{Operation: OpCreateSeason, Scope: Scope{LeagueID: segments[1]}}
	case len(segments) == 3 && segments[0] == "seasons" && segments[2] == "sessions" && segments[1] != "":
		return &RouteMatch{Operation: OpCreateSession, Scope: Scope{SeasonID: segments[1]}}
	case len(segments) == 3 && segments[0] == "sessions" && segments[2] == "games" && segments[1] != "":
		return &RouteMatch{Operation: OpCreateGame, Scope: Scope{SessionID: segments[1]}}
	}
	return nil
}

// Authorize gates the mutation for userID. An ungated route passes with a
// nil scope. Gated routes walk the chain to the owning league: a broken link
// is a not-found, a non-admin grant is a forbidden, and success returns the
// fully resolved scope.
func (r *Resolver) Authorize(ctx context.Context, method, path, userID string) (*Scope, error) {
	match := ResolveRoute(method, path)
	if match == nil {
		return nil, nil
	}

	scope := match.Scope
	switch match.Operation {
	case OpCreateLeague:
		// Any authenticated caller may create a league; the repository
		// grants them admin on it.
		return &scope, nil

	case OpCreateSeason:
		// Scope already carries the league id from the route.

	case OpCreateSession:
		season, err := r.seasons.GetSeason(ctx, scope.SeasonID)
		if err != nil {
			return nil, err
		}
		if season == nil {
			return nil, scopeNotFound()
		}
		scope.LeagueID = season.LeagueID

	case OpCreateGame:
		session, err := r.sessions.GetSession(ctx, scope.SessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, scopeNotFound()
		}
		scope.SeasonID = session.SeasonID

		season, err := r.seasons.GetSeason(ctx, scope.SeasonID)
		if err != nil {
			return nil, err
		}
		if season == nil {
			return nil, scopeNotFound()
		}
		scope.LeagueID = season.LeagueID
	}

	grant, err := r.acls.GetGrant(ctx, scope.LeagueID, userID)
	if err != nil {
		return nil, err
	}
	if grant == nil || grant.Role != domain.RoleAdmin {
		r.logger.Info("Mutation denied",
			zap.String("operation", string(match.Operation)),
			zap.String("leagueID", scope.LeagueID),
			zap.String("userID", userID),
		)
		return nil, appErrors.NewForbiddenError("admin role required").
			WithCode(appErrors.CodeAdminRequired)
	}
	return &scope, nil
}

func scopeNotFound() error {
	return appErrors.NewNotFoundError("authorization scope").
		WithCode(appErrors.CodeACLScopeNotFound)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
