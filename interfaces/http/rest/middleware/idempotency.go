package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"rinkhq-backend/application/idempotency"
	"rinkhq-backend/pkg/common"
	appErrors "rinkhq-backend/pkg/errors"
)

// IdempotencyKeyHeader is the opt-in deduplication header.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxGuardedBody = 1 << 20 // 1 MiB

// Idempotency applies the guard to POSTs carrying an Idempotency-Key. The
// downstream handler runs as the guarded mutation; its response is captured
// and stored so a retry replays it byte for byte.
func Idempotency(guard *idempotency.Guard, errorHandler *appErrors.ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			email, ok := common.GetUserEmail(r.Context())
			if !ok {
				errorHandler.Handle(w, r, appErrors.NewUnauthorizedError("authentication required"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxGuardedBody))
			if err != nil {
				errorHandler.Handle(w, r, appErrors.NewValidationError("unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			scope := fmt.Sprintf("%s:%s:%s", email, r.Method, r.URL.Path)
			result, err := guard.Execute(r.Context(), scope, key, body, func(ctx context.Context) (int, string, error) {
				recorder := newResponseRecorder()
				next.ServeHTTP(recorder, r.WithContext(ctx))
				return recorder.status, recorder.body.String(), nil
			})
			if err != nil {
				errorHandler.Handle(w, r, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			if result.Replayed {
				w.Header().Set("Idempotency-Replayed", "true")
			}
			w.WriteHeader(result.StatusCode)
			io.WriteString(w, result.Body)
		})
	}
}

// responseRecorder buffers the downstream response so it can be stored and
// replayed.
type responseRecorder struct {
	status int
	body   bytes.Buffer
	header http.Header
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{status: http.StatusOK, header: make(http.Header)}
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) WriteHeader(status int) { r.status = status }

func (r *responseRecorder) Write(p []byte) (int, error) { return r.body.Write(p) }
