package repository

import (
	"context"

	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// rosterItem is the stored shape of a roster assignment.
type rosterItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	GameID       string `dynamodbav:"GameID"`
	TeamID       string `dynamodbav:"TeamID"`
	PlayerID     string `dynamodbav:"PlayerID"`
	JerseyNumber int    `dynamodbav:"JerseyNumber,omitempty"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
}

// RosterRepository implements ports.RosterRepository.
type RosterRepository struct {
	base
}

// NewRosterRepository creates a roster repository.
func NewRosterRepository(store kvstore.Store, logger *zap.Logger) *RosterRepository {
	return &RosterRepository{base: newBase(store, logger)}
}

// AssignToRoster places a player on a team for one game. Re-assigning the
// same (game, team, player) overwrites the row, keeping its creation
// timestamp.
func (r *RosterRepository) AssignToRoster(ctx context.Context, input ports.AssignRosterInput) (*domain.RosterAssignment, error) {
	if input.GameID == "" || input.TeamID == "" || input.PlayerID == "" {
		return nil, appErrors.NewValidationError("game id, team id and player id are required")
	}

	now := r.now()
	createdAt := formatTime(now)

	key := kvstore.Key{PK: kvstore.GamePK(input.GameID), SK: kvstore.RosterSK(input.TeamID, input.PlayerID)}
	if raw, err := r.store.Get(ctx, key); err == nil {
		var existing rosterItem
		if ok, decErr := decodeItem(raw, entityRoster, &existing); decErr == nil && ok {
			createdAt = existing.CreatedAt
		}
	}

	item, err := marshalItem(rosterItem{
		PK:           key.PK,
		SK:           key.SK,
		EntityType:   entityRoster,
		GameID:       input.GameID,
		TeamID:       input.TeamID,
		PlayerID:     input.PlayerID,
		JerseyNumber: input.JerseyNumber,
		CreatedAt:    createdAt,
		UpdatedAt:    formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("assign roster", err)
	}
	if err := r.store.Put(ctx, item, false); err != nil {
		return nil, appErrors.NewDatabaseError("assign roster", err)
	}

	r.logger.Info("Roster assignment written",
		zap.String("gameID", input.GameID),
		zap.String("teamID", input.TeamID),
		zap.String("playerID", input.PlayerID),
	)
	return &domain.RosterAssignment{
		GameID:       input.GameID,
		TeamID:       input.TeamID,
		PlayerID:     input.PlayerID,
		JerseyNumber: input.JerseyNumber,
		CreatedAt:    parseTime(createdAt),
		UpdatedAt:    now,
	}, nil
}

// ListRoster returns every roster assignment for the game, grouped by team
// through the sort-key order.
func (r *RosterRepository) ListRoster(ctx context.Context, gameID string) ([]domain.RosterAssignment, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.GamePK(gameID), kvstore.RosterPrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list roster", err)
	}

	assignments := make([]domain.RosterAssignment, 0, len(rows))
	for _, raw := range rows {
		var item rosterItem
		ok, err := decodeItem(raw, entityRoster, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode roster", err)
		}
		if !ok {
			continue
		}
		assignments = append(assignments, domain.RosterAssignment{
			GameID:       item.GameID,
			TeamID:       item.TeamID,
			PlayerID:     item.PlayerID,
			JerseyNumber: item.JerseyNumber,
			CreatedAt:    parseTime(item.CreatedAt),
			UpdatedAt:    parseTime(item.UpdatedAt),
		})
	}
	return assignments, nil
}

// RemoveFromRoster deletes one assignment. Removing an absent assignment is
// a no-op.
func (r *RosterRepository) RemoveFromRoster(ctx context.Context, gameID, teamID, playerID string) error {
	if gameID == "" || teamID == "" || playerID == "" {
		return appErrors.NewValidationError("game id, team id and player id are required")
	}
	key := kvstore.Key{PK: kvstore.GamePK(gameID), SK: kvstore.RosterSK(teamID, playerID)}
	if err := r.store.Delete(ctx, key); err != nil {
		return appErrors.NewDatabaseError("remove roster assignment", err)
	}
	return nil
}
