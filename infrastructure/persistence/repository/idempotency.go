package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// idempotencyItem is the stored shape of an idempotency record.
type idempotencyItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	Scope        string `dynamodbav:"Scope"`
	IdemKey      string `dynamodbav:"IdemKey"`
	RequestHash  string `dynamodbav:"RequestHash"`
	StatusCode   int    `dynamodbav:"StatusCode"`
	ResponseBody string `dynamodbav:"ResponseBody"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
}

// IdempotencyRepository implements ports.IdempotencyStore. Records are
// write-once; the conditional create is the only mutual-exclusion primitive
// concurrent retries need.
type IdempotencyRepository struct {
	base
}

// NewIdempotencyRepository creates an idempotency store.
func NewIdempotencyRepository(store kvstore.Store, logger *zap.Logger) *IdempotencyRepository {
	return &IdempotencyRepository{base: newBase(store, logger)}
}

// GetRecord returns the stored record for (scope, key), or nil when absent.
func (r *IdempotencyRepository) GetRecord(ctx context.Context, scope, key string) (*domain.IdempotencyRecord, error) {
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.IdempotencyPK(scope, key), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get idempotency record", err)
	}
	var item idempotencyItem
	ok, err := decodeItem(raw, entityIdempotency, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode idempotency record", err)
	}
	if !ok {
		return nil, nil
	}
	return &domain.IdempotencyRecord{
		Scope:        item.Scope,
		Key:          item.IdemKey,
		RequestHash:  item.RequestHash,
		StatusCode:   item.StatusCode,
		ResponseBody: item.ResponseBody,
		CreatedAt:    parseTime(item.CreatedAt),
		UpdatedAt:    parseTime(item.UpdatedAt),
	}, nil
}

// CreateRecord writes the record if and only if no record exists yet for the
// same (scope, key). A lost race surfaces as a conflict so the caller can
// re-read the winner's record.
func (r *IdempotencyRepository) CreateRecord(ctx context.Context, record domain.IdempotencyRecord) error {
	now := r.now()
	item, err := marshalItem(idempotencyItem{
		PK:           kvstore.IdempotencyPK(record.Scope, record.Key),
		SK:           kvstore.SortKeyMetadata,
		EntityType:   entityIdempotency,
		Scope:        record.Scope,
		IdemKey:      record.Key,
		RequestHash:  record.RequestHash,
		StatusCode:   record.StatusCode,
		ResponseBody: record.ResponseBody,
		CreatedAt:    formatTime(now),
		UpdatedAt:    formatTime(now),
	})
	if err != nil {
		return appErrors.NewDatabaseError("create idempotency record", err)
	}
	if err := r.store.Put(ctx, item, true); err != nil {
		if errors.Is(err, kvstore.ErrConditionFailed) {
			return appErrors.NewConflictError("idempotency record already exists").
				WithCode(appErrors.CodeIdempotencyConflict)
		}
		return appErrors.NewDatabaseError("create idempotency record", err)
	}
	return nil
}
