package middleware

import (
	"context"
	"net/http"

	"rinkhq-backend/application/acl"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

type scopeContextKey struct{}

// ACL gates the league-mutation routes through the scope resolver. The
// resolved scope is stashed in the context so handlers reuse the proven
// entity chain instead of re-walking it.
func ACL(resolver *acl.Resolver, errorHandler *appErrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := common.GetUserEmail(r.Context())
			if !ok {
				errorHandler.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
				return
			}

			scope, err := resolver.Authorize(r.Context(), r.Method, r.URL.Path, email)
			if err != nil {
				errorHandler.Handle(w, r, err)
				return
			}
			if scope != nil {
				r = r.WithContext(context.WithValue(r.Context(), scopeContextKey{}, scope))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ScopeFromContext returns the scope the ACL middleware resolved, if any.
func ScopeFromContext(ctx context.Context) (*acl.Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(*acl.Scope)
	return scope, ok
}
