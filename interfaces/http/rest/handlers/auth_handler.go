// Package handlers implements the REST endpoints.
package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"rinkhq-backend/application/auth"
	"rinkhq-backend/interfaces/http/rest/middleware"
	throttle "rinkhq-backend/pkg/auth"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

// AuthHandler handles sign-in and session endpoints.
type AuthHandler struct {
	authenticator *auth.Authenticator
	limiter       throttle.Limiter
	errors        *appErrors.ErrorHandler
	secureCookies bool
	logger        *zap.Logger
}

// NewAuthHandler creates an auth handler. secureCookies should be true
// everywhere except local development over plain HTTP.
func NewAuthHandler(authenticator *auth.Authenticator, limiter throttle.Limiter, errorHandler *appErrors.ErrorHandler, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		limiter:       limiter,
		errors:        errorHandler,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type startRequest struct {
	Email string `json:"email"`
}

type startResponse struct {
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAtEpoch"`
	MessageID string `json:"messageId"`
}

// Start handles POST /auth/magic-link.
func (h *AuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body"))
		return
	}

	// Throttle per address before touching the token store. Normalization
	// here only affects the throttle key; the authenticator validates for
	// real.
	throttleKey := strings.ToLower(strings.TrimSpace(req.Email))
	allowed, err := h.limiter.Allow(r.Context(), throttleKey)
	if err != nil {
		h.logger.Warn("Throttle check failed", zap.Error(err))
	}
	if !allowed {
		h.errors.Handle(w, r, appErrors.NewRateLimitError("too many sign-in attempts, try again later"))
		return
	}

	result, err := h.authenticator.Start(r.Context(), req.Email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, startResponse{
		Email:     result.Email,
		ExpiresAt: result.ExpiresAt,
		MessageID: result.MessageID,
	})
}

type sessionResponse struct {
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAtEpoch"`
	ExpiresAt int64  `json:"expiresAtEpoch"`
	MaxAge    int    `json:"maxAgeSeconds"`
}

// Callback handles GET /auth/callback?token={tokenId}.{secret}.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	session, err := h.authenticator.Complete(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.SessionID,
		Path:     "/",
		MaxAge:   session.MaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	common.RespondJSON(w, http.StatusOK, sessionResponse{
		Email:     session.Email,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		MaxAge:    session.MaxAge,
	})
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		h.errors.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
		return
	}
	identity, err := h.authenticator.GetSession(r.Context(), cookie.Value)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if identity == nil {
		h.errors.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"email": identity.Email})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authenticator.Logout(r.Context(), cookie.Value); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
