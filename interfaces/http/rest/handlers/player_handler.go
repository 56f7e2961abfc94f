package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// PlayerHandler handles player endpoints.
type PlayerHandler struct {
	players ports.PlayerRepository
	errors  *appErrors.ErrorHandler
	logger  *zap.Logger
}

// NewPlayerHandler creates a player handler.
func NewPlayerHandler(players ports.PlayerRepository, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{players: players, errors: errorHandler, logger: logger}
}

type createPlayerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

// Create handles POST /players.
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	player, err := h.players.CreatePlayer(r.Context(), ports.CreatePlayerInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, player)
}

// Get handles GET /players/{playerID}.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.GetPlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if player == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("player"))
		return
	}
	common.RespondJSON(w, http.StatusOK, player)
}
