package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// magicTokenItem is the stored shape of a magic-link token. Only the hash of
// the secret is persisted.
type magicTokenItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	TokenID    string `dynamodbav:"TokenID"`
	Email      string `dynamodbav:"Email"`
	TokenHash  string `dynamodbav:"TokenHash"`
	ExpiresAt  int64  `dynamodbav:"ExpiresAt"`
	UsedAt     string `dynamodbav:"UsedAt,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// authSessionItem is the stored shape of an auth session.
type authSessionItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SessionID  string `dynamodbav:"SessionID"`
	Email      string `dynamodbav:"Email"`
	ExpiresAt  int64  `dynamodbav:"ExpiresAt"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// TokenRepository implements ports.TokenStore.
type TokenRepository struct {
	base
}

// NewTokenRepository creates a magic-token store.
func NewTokenRepository(store kvstore.Store, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{base: newBase(store, logger)}
}

// CreateToken writes the token record, failing if the token id already
// exists. Ids are random, so a collision is a hard failure rather than a
// retry loop.
func (r *TokenRepository) CreateToken(ctx context.Context, token domain.MagicToken) error {
	now := r.now()
	item, err := marshalItem(magicTokenItem{
		PK:         kvstore.MagicTokenPK(token.TokenID),
		SK:         kvstore.SortKeyMetadata,
		EntityType: entityMagicToken,
		TokenID:    token.TokenID,
		Email:      token.Email,
		TokenHash:  token.TokenHash,
		ExpiresAt:  token.ExpiresAt,
		CreatedAt:  formatTime(now),
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return appErrors.NewDatabaseError("create magic token", err)
	}
	if err := r.store.Put(ctx, item, true); err != nil {
		if errors.Is(err, kvstore.ErrConditionFailed) {
			return appErrors.NewConflictError("magic token id already exists")
		}
		return appErrors.NewDatabaseError("create magic token", err)
	}
	return nil
}

// RedeemToken marks the token used in a single conditional update: the
// stored hash must match, the token must be unused and not yet expired. All
// three failure modes collapse into the same unauthorized error, so a caller
// probing with a forged or stale link learns nothing about which guard
// tripped.
func (r *TokenRepository) RedeemToken(ctx context.Context, tokenID, tokenHash string, now time.Time) (*domain.MagicToken, error) {
	key := kvstore.Key{PK: kvstore.MagicTokenPK(tokenID), SK: kvstore.SortKeyMetadata}
	usedAt := formatTime(now)

	err := r.store.Update(ctx, key,
		map[string]interface{}{
			"UsedAt":    usedAt,
			"UpdatedAt": usedAt,
		},
		kvstore.UpdateCondition{
			StringEquals: map[string]string{
				"EntityType": entityMagicToken,
				"TokenHash":  tokenHash,
			},
			Absent:  []string{"UsedAt"},
			AtLeast: map[string]int64{"ExpiresAt": now.Unix()},
		},
	)
	if err != nil {
		if errors.Is(err, kvstore.ErrConditionFailed) {
			return nil, appErrors.NewUnauthorizedError("invalid or expired magic link").
				WithCode(appErrors.CodeInvalidMagicLink)
		}
		return nil, appErrors.NewDatabaseError("redeem magic token", err)
	}

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, appErrors.NewDatabaseError("load redeemed token", err)
	}
	var item magicTokenItem
	ok, err := decodeItem(raw, entityMagicToken, &item)
	if err != nil || !ok {
		return nil, appErrors.NewDatabaseError("load redeemed token", err)
	}

	r.logger.Info("Magic token redeemed", zap.String("tokenID", tokenID))
	return &domain.MagicToken{
		TokenID:   item.TokenID,
		Email:     item.Email,
		TokenHash: item.TokenHash,
		ExpiresAt: item.ExpiresAt,
		UsedAt:    item.UsedAt,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}, nil
}

// AuthSessionRepository implements ports.SessionStore.
type AuthSessionRepository struct {
	base
}

// NewAuthSessionRepository creates an auth-session store.
func NewAuthSessionRepository(store kvstore.Store, logger *zap.Logger) *AuthSessionRepository {
	return &AuthSessionRepository{base: newBase(store, logger)}
}

// CreateSession writes the session record.
func (r *AuthSessionRepository) CreateSession(ctx context.Context, session domain.AuthSession) error {
	now := r.now()
	item, err := marshalItem(authSessionItem{
		PK:         kvstore.AuthSessionPK(session.SessionID),
		SK:         kvstore.SortKeyMetadata,
		EntityType: entityAuthSession,
		SessionID:  session.SessionID,
		Email:      session.Email,
		ExpiresAt:  session.ExpiresAt,
		CreatedAt:  formatTime(now),
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return appErrors.NewDatabaseError("create auth session", err)
	}
	if err := r.store.Put(ctx, item, true); err != nil {
		return appErrors.NewDatabaseError("create auth session", err)
	}
	return nil
}

// GetSession returns the session record, or nil for a missing or mistyped
// one. Expiry is checked by the authenticator, not here.
func (r *AuthSessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	if sessionID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.AuthSessionPK(sessionID), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get auth session", err)
	}
	var item authSessionItem
	ok, err := decodeItem(raw, entityAuthSession, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode auth session", err)
	}
	if !ok {
		return nil, nil
	}
	return &domain.AuthSession{
		SessionID: item.SessionID,
		Email:     item.Email,
		ExpiresAt: item.ExpiresAt,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}, nil
}

// DeleteSession removes the session record. Deleting an absent session is a
// no-op.
func (r *AuthSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.AuthSessionPK(sessionID), SK: kvstore.SortKeyMetadata}); err != nil {
		return appErrors.NewDatabaseError("delete auth session", err)
	}
	return nil
}
