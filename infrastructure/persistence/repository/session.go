package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// sessionItem is the stored shape of both the canonical session record and
// its denormalized by-season copy.
type sessionItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SessionID  string `dynamodbav:"SessionID"`
	SeasonID   string `dynamodbav:"SeasonID"`
	Name       string `dynamodbav:"Name"`
	Date       string `dynamodbav:"Date,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// SessionRepository implements ports.SessionRepository.
type SessionRepository struct {
	base
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(store kvstore.Store, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{base: newBase(store, logger)}
}

// CreateSession writes the canonical record and the by-season copy with the
// same timestamps.
func (r *SessionRepository) CreateSession(ctx context.Context, input ports.CreateSessionInput) (*domain.Session, error) {
	if input.SeasonID == "" {
		return nil, appErrors.NewValidationError("season id is required")
	}
	if input.Name == "" {
		return nil, appErrors.NewValidationError("session name is required")
	}

	now := r.now()
	session := &domain.Session{
		SessionID: uuid.NewString(),
		SeasonID:  input.SeasonID,
		Name:      input.Name,
		Date:      input.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	canonical := sessionToItem(session)
	canonical.PK = kvstore.SessionPK(session.SessionID)
	canonical.SK = kvstore.SortKeyMetadata

	bySeason := sessionToItem(session)
	bySeason.PK = kvstore.SeasonPK(session.SeasonID)
	bySeason.SK = kvstore.SessionSK(session.SessionID)

	for _, record := range []sessionItem{canonical, bySeason} {
		item, err := marshalItem(record)
		if err != nil {
			return nil, appErrors.NewDatabaseError("create session", err)
		}
		if err := r.store.Put(ctx, item, false); err != nil {
			return nil, appErrors.NewDatabaseError("create session", err)
		}
	}

	r.logger.Info("Session created",
		zap.String("sessionID", session.SessionID),
		zap.String("seasonID", session.SeasonID),
	)
	return session, nil
}

// GetSession returns the canonical session record, or nil when absent.
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.SessionPK(sessionID), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get session", err)
	}
	var item sessionItem
	ok, err := decodeItem(raw, entitySession, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode session", err)
	}
	if !ok {
		return nil, nil
	}
	return sessionFromItem(item), nil
}

// ListSessionsForSeason returns the season's sessions from the denormalized
// copies, in sort-key order.
func (r *SessionRepository) ListSessionsForSeason(ctx context.Context, seasonID string) ([]domain.Session, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.SeasonPK(seasonID), kvstore.SessionPrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list sessions", err)
	}

	sessions := make([]domain.Session, 0, len(rows))
	for _, raw := range rows {
		var item sessionItem
		ok, err := decodeItem(raw, entitySession, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode session", err)
		}
		if !ok {
			continue
		}
		sessions = append(sessions, *sessionFromItem(item))
	}
	return sessions, nil
}

func sessionToItem(session *domain.Session) sessionItem {
	return sessionItem{
		EntityType: entitySession,
		SessionID:  session.SessionID,
		SeasonID:   session.SeasonID,
		Name:       session.Name,
		Date:       session.Date,
		CreatedAt:  formatTime(session.CreatedAt),
		UpdatedAt:  formatTime(session.UpdatedAt),
	}
}

func sessionFromItem(item sessionItem) *domain.Session {
	return &domain.Session{
		SessionID: item.SessionID,
		SeasonID:  item.SeasonID,
		Name:      item.Name,
		Date:      item.Date,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}
