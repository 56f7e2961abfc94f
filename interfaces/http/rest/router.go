package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"rinkhq-backend/application/acl"
	"rinkhq-backend/application/auth"
	"rinkhq-backend/application/idempotency"
	"rinkhq-backend/infrastructure/config"
	"rinkhq-backend/interfaces/http/rest/handlers"
	"rinkhq-backend/interfaces/http/rest/middleware"
	appErrors "rinkhq-backend/pkg/errors"
	"rinkhq-backend/pkg/observability"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	League  *handlers.LeagueHandler
	Season  *handlers.SeasonHandler
	Team    *handlers.TeamHandler
	Session *handlers.SessionHandler
	Game    *handlers.GameHandler
	Goal    *handlers.GoalHandler
	Roster  *handlers.RosterHandler
	Player  *handlers.PlayerHandler
}

// Router creates and configures the HTTP router.
type Router struct {
	cfg           *config.Config
	handlers      Handlers
	authenticator *auth.Authenticator
	resolver      *acl.Resolver
	guard         *idempotency.Guard
	errors        *appErrors.ErrorHandler
	logger        *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg *config.Config,
	h Handlers,
	authenticator *auth.Authenticator,
	resolver *acl.Resolver,
	guard *idempotency.Guard,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		handlers:      h,
		authenticator: authenticator,
		resolver:      resolver,
		guard:         guard,
		errors:        errorHandler,
		logger:        logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableTracing {
		router.Use(observability.TracingMiddleware("rinkhq-backend"))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.rinkhq.app"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Idempotency-Replayed"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Public auth endpoints. Magic-link start and callback run before any
	// session exists.
	router.Post("/auth/magic-link", rt.handlers.Auth.Start)
	router.Get("/auth/callback", rt.handlers.Auth.Callback)

	// Everything below requires a valid session cookie.
	router.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(rt.authenticator, rt.errors))
		r.Use(middleware.ACL(rt.resolver, rt.errors))
		r.Use(middleware.Idempotency(rt.guard, rt.errors))

		r.Get("/auth/session", rt.handlers.Auth.Session)
		r.Post("/auth/logout", rt.handlers.Auth.Logout)

		r.Route("/leagues", func(r chi.Router) {
			r.Post("/", rt.handlers.League.Create)
			r.Get("/", rt.handlers.League.List)
			r.Get("/{leagueID}", rt.handlers.League.Get)
			r.Delete("/{leagueID}", rt.handlers.League.Delete)
			r.Post("/{leagueID}/seasons", rt.handlers.Season.Create)
			r.Get("/{leagueID}/seasons", rt.handlers.Season.List)
		})

		r.Route("/seasons/{seasonID}", func(r chi.Router) {
			r.Get("/", rt.handlers.Season.Get)
			r.Delete("/", rt.handlers.Season.Delete)
			r.Post("/sessions", rt.handlers.Session.Create)
			r.Get("/sessions", rt.handlers.Session.List)
			r.Post("/teams", rt.handlers.Team.Create)
			r.Get("/teams", rt.handlers.Team.List)
			r.Get("/teams/{teamID}", rt.handlers.Team.Get)
		})

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", rt.handlers.Session.Get)
			r.Post("/games", rt.handlers.Game.Create)
			r.Get("/games", rt.handlers.Game.List)
		})

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", rt.handlers.Game.Get)
			r.Patch("/", rt.handlers.Game.Update)
			r.Delete("/", rt.handlers.Game.Delete)
			r.Post("/goals", rt.handlers.Goal.Create)
			r.Get("/goals", rt.handlers.Goal.List)
			r.Post("/roster", rt.handlers.Roster.Assign)
			r.Get("/roster", rt.handlers.Roster.List)
			r.Delete("/roster/{teamID}/{playerID}", rt.handlers.Roster.Remove)
		})

		r.Route("/players", func(r chi.Router) {
			r.Post("/", rt.handlers.Player.Create)
			r.Get("/{playerID}", rt.handlers.Player.Get)
		})
	})

	return router
}

// healthCheck handles health check requests.
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
