package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// RosterHandler handles per-game roster endpoints.
type RosterHandler struct {
	rosters ports.RosterRepository
	errors  *appErrors.ErrorHandler
	logger  *zap.Logger
}

// NewRosterHandler creates a roster handler.
func NewRosterHandler(rosters ports.RosterRepository, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *RosterHandler {
	return &RosterHandler{rosters: rosters, errors: errorHandler, logger: logger}
}

type assignRosterRequest struct {
	TeamID       string `json:"teamId"`
	PlayerID     string `json:"playerId"`
	JerseyNumber int    `json:"jerseyNumber,omitempty"`
}

// Assign handles POST /games/{gameID}/roster.
func (h *RosterHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRosterRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	assignment, err := h.rosters.AssignToRoster(r.Context(), ports.AssignRosterInput{
		GameID:       chi.URLParam(r, "gameID"),
		TeamID:       req.TeamID,
		PlayerID:     req.PlayerID,
		JerseyNumber: req.JerseyNumber,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, assignment)
}

// List handles GET /games/{gameID}/roster.
func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.rosters.ListRoster(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, assignments)
}

// Remove handles DELETE /games/{gameID}/roster/{teamID}/{playerID}.
func (h *RosterHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.rosters.RemoveFromRoster(r.Context(),
		chi.URLParam(r, "gameID"),
		chi.URLParam(r, "teamID"),
		chi.URLParam(r, "playerID"),
	)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
