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

// SessionHandler handles game-session endpoints.
type SessionHandler struct {
	sessions ports.SessionRepository
	errors   *appErrors.ErrorHandler
	logger   *zap.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions ports.SessionRepository, errorHandler *appErrors.ErrorHandler, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, errors: errorHandler, logger: logger}
}

type createSessionRequest struct {
	Name string `json:"name"`
	Date string `json:"date,omitempty"`
}

// Create handles POST /seasons/{seasonID}/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	seasonID := chi.URLParam(r, "seasonID")
	if scope, ok := middleware.ScopeFromContext(r.Context()); ok && scope.SeasonID != "" {
		seasonID = scope.SeasonID
	}

	session, err := h.sessions.CreateSession(r.Context(), ports.CreateSessionInput{
		SeasonID: seasonID,
		Name:     req.Name,
		Date:     req.Date,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, session)
}

// Get handles GET /sessions/{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if session == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("session"))
		return
	}
	common.RespondJSON(w, http.StatusOK, session)
}

// List handles GET /seasons/{seasonID}/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListSessionsForSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sessions)
}
