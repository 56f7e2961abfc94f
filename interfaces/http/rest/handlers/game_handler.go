package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/domain/events"
	"rinkhq-backend/interfaces/http/rest/middleware"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// GameHandler handles game endpoints.
type GameHandler struct {
	games  ports.GameRepository
	bus    ports.EventBus
	errors *appErrors.ErrorHandler
	logger *zap.Logger
}

// NewGameHandler creates a game handler.
func NewGameHandler(games ports.GameRepository, bus ports.EventBus, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *GameHandler {
	return &GameHandler{games: games, bus: bus, errors: errorHandler, logger: logger}
}

type createGameRequest struct {
	HomeTeamID string    `json:"homeTeamId"`
	AwayTeamID string    `json:"awayTeamId"`
	StartTime  time.Time `json:"gameStartTs"`
}

// Create handles POST /sessions/{sessionID}/games.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if scope, ok := middleware.ScopeFromContext(r.Context()); ok && scope.SessionID != "" {
		sessionID = scope.SessionID
	}

	game, err := h.games.CreateGame(r.Context(), ports.CreateGameInput{
		SessionID:  sessionID,
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		StartTime:  req.StartTime,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.publish(r, events.NewGameScheduled(game.GameID, game.SessionID, time.Now().UTC()))
	common.RespondJSON(w, http.StatusCreated, game)
}

// Get handles GET /games/{gameID}.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if game == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("game"))
		return
	}
	common.RespondJSON(w, http.StatusOK, game)
}

// List handles GET /sessions/{sessionID}/games.
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListGamesForSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, games)
}

type updateGameRequest struct {
	Status    *string    `json:"status,omitempty"`
	StartTime *time.Time `json:"gameStartTs,omitempty"`
}

// Update handles PATCH /games/{gameID}.
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateGameRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	input := ports.UpdateGameInput{StartTime: req.StartTime}
	if req.Status != nil {
		status := domain.GameStatus(*req.Status)
		input.Status = &status
	}

	game, err := h.games.UpdateGame(r.Context(), chi.URLParam(r, "gameID"), input)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.publish(r, events.NewGameUpdated(game.GameID, game.SessionID, time.Now().UTC()))
	common.RespondJSON(w, http.StatusOK, game)
}

// Delete handles DELETE /games/{gameID}.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	deleted, sessionRemoved, err := h.games.DeleteGame(r.Context(), gameID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if !deleted {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("game"))
		return
	}

	h.publish(r, events.NewGameDeleted(gameID, game.SessionID, sessionRemoved, time.Now().UTC()))
	common.RespondJSON(w, http.StatusOK, map[string]bool{
		"deleted":        true,
		"sessionRemoved": sessionRemoved,
	})
}

func (h *GameHandler) publish(r *http.Request, event events.DomainEvent) {
	if err := h.bus.Publish(r.Context(), event); err != nil {
		h.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
