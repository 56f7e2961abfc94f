package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// gameItem is the stored shape of both the canonical game record and the
// session index entry. The index carries the full payload so a by-session
// listing needs no follow-up reads.
type gameItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	GameID     string `dynamodbav:"GameID"`
	SessionID  string `dynamodbav:"SessionID"`
	HomeTeamID string `dynamodbav:"HomeTeamID"`
	AwayTeamID string `dynamodbav:"AwayTeamID"`
	StartTime  string `dynamodbav:"StartTime"`
	Status     string `dynamodbav:"Status"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// GameRepository implements ports.GameRepository.
type GameRepository struct {
	base
}

// NewGameRepository creates a game repository.
func NewGameRepository(store kvstore.Store, logger *zap.Logger) *GameRepository {
	return &GameRepository{base: newBase(store, logger)}
}

// CreateGame writes the canonical record, then the session index entry
// whose sort key embeds the start time. Two-step write with no cross-record
// atomicity; both records carry the game id, so a crash between the steps
// is repairable.
func (r *GameRepository) CreateGame(ctx context.Context, input ports.CreateGameInput) (*domain.Game, error) {
	if input.SessionID == "" {
		return nil, appErrors.NewValidationError("session id is required")
	}
	if input.HomeTeamID == "" || input.AwayTeamID == "" {
		return nil, appErrors.NewValidationError("home and away team ids are required")
	}
	if input.HomeTeamID == input.AwayTeamID {
		return nil, appErrors.NewValidationError("a team cannot play itself")
	}
	if input.StartTime.IsZero() {
		return nil, appErrors.NewValidationError("game start time is required")
	}

	now := r.now()
	game := &domain.Game{
		GameID:     uuid.NewString(),
		SessionID:  input.SessionID,
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		StartTime:  input.StartTime.UTC().Truncate(time.Second),
		Status:     domain.GameStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := r.putGameRecords(ctx, game, formatTime(game.CreatedAt)); err != nil {
		return nil, err
	}

	r.logger.Info("Game created",
		zap.String("gameID", game.GameID),
		zap.String("sessionID", game.SessionID),
	)
	return game, nil
}

// GetGame returns the canonical game record, or nil when absent.
func (r *GameRepository) GetGame(ctx context.Context, gameID string) (*domain.Game, error) {
	if gameID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.GamePK(gameID), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get game", err)
	}
	var item gameItem
	ok, err := decodeItem(raw, entityGame, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode game", err)
	}
	if !ok {
		return nil, nil
	}
	return gameFromItem(item), nil
}

// ListGamesForSession returns the session's games chronologically: the
// index sort key embeds the start time, so store order is the answer.
func (r *GameRepository) ListGamesForSession(ctx context.Context, sessionID string) ([]domain.Game, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.SessionPK(sessionID), kvstore.GamePrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list games", err)
	}

	games := make([]domain.Game, 0, len(rows))
	for _, raw := range rows {
		var item gameItem
		ok, err := decodeItem(raw, entityGame, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode game", err)
		}
		if !ok {
			continue
		}
		games = append(games, *gameFromItem(item))
	}
	return games, nil
}

// UpdateGame merges the given fields into the canonical record, then
// rewrites the session index entry. When the start time changed the stale
// index entry is deleted first and the replacement keeps the original index
// creation timestamp, so the index history stays stable.
func (r *GameRepository) UpdateGame(ctx context.Context, gameID string, input ports.UpdateGameInput) (*domain.Game, error) {
	if input.Status == nil && input.StartTime == nil {
		return nil, appErrors.NewValidationError("at least one of status or gameStartTs is required")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, appErrors.NewValidationError("unknown game status: " + string(*input.Status))
	}

	game, err := r.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, appErrors.NewNotFoundError("game")
	}

	oldStart := game.StartTime
	if input.Status != nil {
		game.Status = *input.Status
	}
	if input.StartTime != nil {
		game.StartTime = input.StartTime.UTC().Truncate(time.Second)
	}
	game.UpdatedAt = r.now()

	canonical := gameToItem(game)
	canonical.PK = kvstore.GamePK(game.GameID)
	canonical.SK = kvstore.SortKeyMetadata
	item, err := marshalItem(canonical)
	if err != nil {
		return nil, appErrors.NewDatabaseError("update game", err)
	}
	if err := r.store.Put(ctx, item, false); err != nil {
		return nil, appErrors.NewDatabaseError("update game", err)
	}

	// The index copy carries the payload, so every update rewrites it;
	// a start-time change additionally moves it to a new sort key.
	oldKey := kvstore.Key{PK: kvstore.SessionPK(game.SessionID), SK: kvstore.GameIndexSK(oldStart, game.GameID)}
	indexCreatedAt := formatTime(game.CreatedAt)
	if raw, err := r.store.Get(ctx, oldKey); err == nil {
		var existing gameItem
		if ok, decErr := decodeItem(raw, entityGame, &existing); decErr == nil && ok {
			indexCreatedAt = existing.CreatedAt
		}
	}
	if !oldStart.Equal(game.StartTime) {
		if err := r.store.Delete(ctx, oldKey); err != nil {
			return nil, appErrors.NewDatabaseError("delete stale game index", err)
		}
	}

	index := gameToItem(game)
	index.PK = kvstore.SessionPK(game.SessionID)
	index.SK = kvstore.GameIndexSK(game.StartTime, game.GameID)
	index.CreatedAt = indexCreatedAt
	indexItem, err := marshalItem(index)
	if err != nil {
		return nil, appErrors.NewDatabaseError("update game index", err)
	}
	if err := r.store.Put(ctx, indexItem, false); err != nil {
		return nil, appErrors.NewDatabaseError("update game index", err)
	}

	r.logger.Info("Game updated",
		zap.String("gameID", game.GameID),
		zap.Bool("rescheduled", !oldStart.Equal(game.StartTime)),
	)
	return game, nil
}

// DeleteGame removes the canonical record and the index entry. Deleting the
// last game of a session also removes that session's canonical and
// denormalized records. Each delete is independently idempotent; there is
// no partial-failure rollback.
func (r *GameRepository) DeleteGame(ctx context.Context, gameID string) (bool, bool, error) {
	game, err := r.GetGame(ctx, gameID)
	if err != nil {
		return false, false, err
	}
	if game == nil {
		return false, false, nil
	}

	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.GamePK(gameID), SK: kvstore.SortKeyMetadata}); err != nil {
		return false, false, appErrors.NewDatabaseError("delete game", err)
	}
	indexKey := kvstore.Key{PK: kvstore.SessionPK(game.SessionID), SK: kvstore.GameIndexSK(game.StartTime, game.GameID)}
	if err := r.store.Delete(ctx, indexKey); err != nil {
		return false, false, appErrors.NewDatabaseError("delete game index", err)
	}

	remaining, err := r.store.QueryPrefix(ctx, kvstore.SessionPK(game.SessionID), kvstore.GamePrefix)
	if err != nil {
		return true, false, appErrors.NewDatabaseError("list remaining games", err)
	}
	if len(remaining) > 0 {
		return true, false, nil
	}

	// Session is now empty; cascade one level up.
	sessionRaw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.SessionPK(game.SessionID), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return true, false, appErrors.NewDatabaseError("get session for cascade", err)
	}
	var session sessionItem
	ok, err := decodeItem(sessionRaw, entitySession, &session)
	if err != nil || !ok {
		return true, false, nil
	}

	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.SessionPK(game.SessionID), SK: kvstore.SortKeyMetadata}); err != nil {
		return true, false, appErrors.NewDatabaseError("cascade delete session", err)
	}
	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.SeasonPK(session.SeasonID), SK: kvstore.SessionSK(game.SessionID)}); err != nil {
		return true, false, appErrors.NewDatabaseError("cascade delete session copy", err)
	}

	r.logger.Info("Session removed with its last game",
		zap.String("gameID", gameID),
		zap.String("sessionID", game.SessionID),
	)
	return true, true, nil
}

// putGameRecords writes the canonical record then the index entry, both
// with the given index creation timestamp.
func (r *GameRepository) putGameRecords(ctx context.Context, game *domain.Game, indexCreatedAt string) error {
	canonical := gameToItem(game)
	canonical.PK = kvstore.GamePK(game.GameID)
	canonical.SK = kvstore.SortKeyMetadata

	index := gameToItem(game)
	index.PK = kvstore.SessionPK(game.SessionID)
	index.SK = kvstore.GameIndexSK(game.StartTime, game.GameID)
	index.CreatedAt = indexCreatedAt

	for _, record := range []gameItem{canonical, index} {
		item, err := marshalItem(record)
		if err != nil {
			return appErrors.NewDatabaseError("write game", err)
		}
		if err := r.store.Put(ctx, item, false); err != nil {
			return appErrors.NewDatabaseError("write game", err)
		}
	}
	return nil
}

func gameToItem(game *domain.Game) gameItem {
	return gameItem{
		EntityType: entityGame,
		GameID:     game.GameID,
		SessionID:  game.SessionID,
		HomeTeamID: game.HomeTeamID,
		AwayTeamID: game.AwayTeamID,
		StartTime:  formatTime(game.StartTime),
		Status:     string(game.Status),
		CreatedAt:  formatTime(game.CreatedAt),
		UpdatedAt:  formatTime(game.UpdatedAt),
	}
}

func gameFromItem(item gameItem) *domain.Game {
	return &domain.Game{
		GameID:     item.GameID,
		SessionID:  item.SessionID,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		StartTime:  parseTime(item.StartTime),
		Status:     domain.GameStatus(item.Status),
		CreatedAt:  parseTime(item.CreatedAt),
		UpdatedAt:  parseTime(item.UpdatedAt),
	}
}
