package middleware

import (
	"net/http"

	"rinkhq-backend/application/auth"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "session"

// SessionAuth resolves the caller's identity from the session cookie. The
// session id is opaque; every request round-trips to the session store, so
// logout takes effect immediately.
func SessionAuth(authenticator *auth.Authenticator, errorHandler *appErrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				errorHandler.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
				return
			}

			identity, err := authenticator.GetSession(r.Context(), cookie.Value)
			if err != nil {
				errorHandler.Handle(w, r, err)
				return
			}
			if identity == nil {
				errorHandler.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
				return
			}

			ctx := common.WithUserEmail(r.Context(), identity.Email)
			ctx = common.WithSessionID(ctx, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
