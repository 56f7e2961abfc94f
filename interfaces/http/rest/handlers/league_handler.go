package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain/events"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// LeagueHandler handles league endpoints.
type LeagueHandler struct {
	leagues ports.LeagueRepository
	bus     ports.EventBus
	errors  *appErrors.ErrorHandler
	logger  *zap.Logger
}

// NewLeagueHandler creates a league handler.
func NewLeagueHandler(leagues ports.LeagueRepository, bus ports.EventBus, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *LeagueHandler {
	return &LeagueHandler{leagues: leagues, bus: bus, errors: errorHandler, logger: logger}
}

type createLeagueRequest struct {
	Name string `json:"name"`
}

// Create handles POST /leagues.
func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := common.GetUserEmail(r.Context())
	if !ok {
		h.errors.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req createLeagueRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	league, err := h.leagues.CreateLeague(r.Context(), ports.CreateLeagueInput{
		Name:          req.Name,
		CreatorUserID: email,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.publish(r, events.NewLeagueCreated(league.LeagueID, email, time.Now().UTC()))
	common.RespondJSON(w, http.StatusCreated, league)
}

// Get handles GET /leagues/{leagueID}.
func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	league, err := h.leagues.GetLeague(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if league == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("league"))
		return
	}
	common.RespondJSON(w, http.StatusOK, league)
}

// List handles GET /leagues, returning the caller's leagues.
func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	email, ok := common.GetUserEmail(r.Context())
	if !ok {
		h.errors.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
		return
	}

	leagues, err := h.leagues.ListLeaguesForUser(r.Context(), email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, leagues)
}

// Delete handles DELETE /leagues/{leagueID}.
func (h *LeagueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.leagues.DeleteLeague(r.Context(), chi.URLParam(r, "leagueID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// publish sends a domain event best-effort.
func (h *LeagueHandler) publish(r *http.Request, event events.DomainEvent) {
	if err := h.bus.Publish(r.Context(), event); err != nil {
		h.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
