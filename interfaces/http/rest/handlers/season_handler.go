package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/interfaces/http/rest/middleware"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// SeasonHandler handles season endpoints.
type SeasonHandler struct {
	seasons ports.SeasonRepository
	errors  *appErrors.ErrorHandler
	logger  *zap.Logger
}

// NewSeasonHandler creates a season handler.
func NewSeasonHandler(seasons ports.SeasonRepository, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *SeasonHandler {
	return &SeasonHandler{seasons: seasons, errors: errorHandler, logger: logger}
}

type createSeasonRequest struct {
	Name     string `json:"name"`
	StartsOn string `json:"startsOn,omitempty"`
	EndsOn   string `json:"endsOn,omitempty"`
}

// Create handles POST /leagues/{leagueID}/seasons.
func (h *SeasonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSeasonRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	// Prefer the chain the ACL middleware already proved; the URL param
	// covers handlers mounted without it.
	leagueID := chi.URLParam(r, "leagueID")
	if scope, ok := middleware.ScopeFromContext(r.Context()); ok && scope.LeagueID != "" {
		leagueID = scope.LeagueID
	}

	season, err := h.seasons.CreateSeason(r.Context(), ports.CreateSeasonInput{
		LeagueID: leagueID,
		Name:     req.Name,
		StartsOn: req.StartsOn,
		EndsOn:   req.EndsOn,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, season)
}

// Get handles GET /seasons/{seasonID}.
func (h *SeasonHandler) Get(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasons.GetSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if season == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("season"))
		return
	}
	common.RespondJSON(w, http.StatusOK, season)
}

// List handles GET /leagues/{leagueID}/seasons.
func (h *SeasonHandler) List(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.seasons.ListSeasonsForLeague(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, seasons)
}

// Delete handles DELETE /seasons/{seasonID}.
func (h *SeasonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.seasons.DeleteSeason(r.Context(), chi.URLParam(r, "seasonID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
