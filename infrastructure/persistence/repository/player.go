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

// playerItem is the stored shape of a player profile.
type playerItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	PlayerID   string `dynamodbav:"PlayerID"`
	FullName   string `dynamodbav:"FullName"`
	Email      string `dynamodbav:"Email,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// PlayerRepository implements ports.PlayerRepository.
type PlayerRepository struct {
	base
}

// NewPlayerRepository creates a player repository.
func NewPlayerRepository(store kvstore.Store, logger *zap.Logger) *PlayerRepository {
	return &PlayerRepository{base: newBase(store, logger)}
}

// CreatePlayer writes a player profile.
func (r *PlayerRepository) CreatePlayer(ctx context.Context, input ports.CreatePlayerInput) (*domain.Player, error) {
	if input.FullName == "" {
		return nil, appErrors.NewValidationError("player name is required")
	}

	now := r.now()
	player := &domain.Player{
		PlayerID:  uuid.NewString(),
		FullName:  input.FullName,
		Email:     input.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	item, err := marshalItem(playerItem{
		PK:         kvstore.PlayerPK(player.PlayerID),
		SK:         kvstore.SortKeyProfile,
		EntityType: entityPlayer,
		PlayerID:   player.PlayerID,
		FullName:   player.FullName,
		Email:      player.Email,
		CreatedAt:  formatTime(now),
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("create player", err)
	}
	if err := r.store.Put(ctx, item, false); err != nil {
		return nil, appErrors.NewDatabaseError("create player", err)
	}

	r.logger.Info("Player created", zap.String("playerID", player.PlayerID))
	return player, nil
}

// GetPlayer returns the player profile, or nil when absent.
func (r *PlayerRepository) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	if playerID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.PlayerPK(playerID), SK: kvstore.SortKeyProfile})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get player", err)
	}
	var item playerItem
	ok, err := decodeItem(raw, entityPlayer, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode player", err)
	}
	if !ok {
		return nil, nil
	}
	return &domain.Player{
		PlayerID:  item.PlayerID,
		FullName:  item.FullName,
		Email:     item.Email,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}, nil
}
