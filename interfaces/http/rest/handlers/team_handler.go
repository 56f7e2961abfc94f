package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// TeamHandler handles team endpoints.
type TeamHandler struct {
	teams  ports.TeamRepository
	errors *appErrors.ErrorHandler
	logger *zap.Logger
}

// NewTeamHandler creates a team handler.
func NewTeamHandler(teams ports.TeamRepository, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, errors: errorHandler, logger: logger}
}

type createTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Create handles POST /seasons/{seasonID}/teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	team, err := h.teams.CreateTeam(r.Context(), ports.CreateTeamInput{
		SeasonID: chi.URLParam(r, "seasonID"),
		Name:     req.Name,
		Color:    req.Color,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, team)
}

// Get handles GET /seasons/{seasonID}/teams/{teamID}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.GetTeam(r.Context(), chi.URLParam(r, "seasonID"), chi.URLParam(r, "teamID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if team == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("team"))
		return
	}
	common.RespondJSON(w, http.StatusOK, team)
}

// List handles GET /seasons/{seasonID}/teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListTeamsForSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, teams)
}
