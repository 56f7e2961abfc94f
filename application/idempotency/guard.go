// Package idempotency gives retried mutations at-most-once effect. The
// conditional create of the idempotency record is the mutual-exclusion
// primitive; the guard never locks.
package idempotency

import (
	"context"

	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	appErrors "rinkhq-backend/pkg/errors"
)

// MaxKeyLength bounds the client-supplied idempotency key.
const MaxKeyLength = 128

// Result is the observable outcome of a guarded mutation.
type Result struct {
	StatusCode int
	Body       string

	// Replayed reports whether the result came from a stored record rather
	// than running the mutation.
	Replayed bool
}

// MutateFunc runs the underlying mutation and returns the response to store.
type MutateFunc func(ctx context.Context) (int, string, error)

// Guard deduplicates mutations per (scope, key).
type Guard struct {
	records ports.IdempotencyStore
	logger  *zap.Logger
}

// NewGuard creates an idempotency guard.
func NewGuard(records ports.IdempotencyStore, logger *zap.Logger) *Guard {
	return &Guard{records: records, logger: logger}
}

// Execute runs mutate at most once per (scope, key, payload). An empty key
// disables deduplication. A replayed call returns the stored response; the
// same key with a different payload is a conflict. Two concurrent requests
// with the same key race on the record's conditional create, and the loser
// replays the winner's response.
func (g *Guard) Execute(ctx context.Context, scope, key string, payload []byte, mutate MutateFunc) (*Result, error) {
	if key == "" {
		status, body, err := mutate(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{StatusCode: status, Body: body}, nil
	}
	if len(key) > MaxKeyLength {
		return nil, appErrors.NewValidationError("idempotency key must be at most 128 characters")
	}

	hash, err := requestHash(scope, payload)
	if err != nil {
		return nil, appErrors.NewInternalError("hash idempotency payload: " + err.Error())
	}

	existing, err := g.records.GetRecord(ctx, scope, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return g.resolve(existing, hash)
	}

	status, body, err := mutate(ctx)
	if err != nil {
		return nil, err
	}

	createErr := g.records.CreateRecord(ctx, domain.IdempotencyRecord{
		Scope:        scope,
		Key:          key,
		RequestHash:  hash,
		StatusCode:   status,
		ResponseBody: body,
	})
	if createErr == nil {
		return &Result{StatusCode: status, Body: body}, nil
	}
	if !appErrors.IsConflict(createErr) {
		return nil, createErr
	}

	// A concurrent request won the race; its record is the authority.
	winner, err := g.records.GetRecord(ctx, scope, key)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		// The winner's record vanished between the failed create and the
		// re-fetch. Fall back to this request's own result.
		g.logger.Warn("Idempotency record missing after lost race",
			zap.String("scope", scope),
			zap.String("key", key),
		)
		return &Result{StatusCode: status, Body: body}, nil
	}
	return g.resolve(winner, hash)
}

// resolve applies the replay-or-conflict decision against a stored record.
func (g *Guard) resolve(record *domain.IdempotencyRecord, hash string) (*Result, error) {
	if record.RequestHash != hash {
		return nil, appErrors.NewConflictError("idempotency key reused with a different payload").
			WithCode(appErrors.CodeIdempotencyConflict)
	}
	return &Result{
		StatusCode: record.StatusCode,
		Body:       record.ResponseBody,
		Replayed:   true,
	}, nil
}
