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

// teamItem is the stored shape of a team record.
type teamItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	TeamID     string `dynamodbav:"TeamID"`
	SeasonID   string `dynamodbav:"SeasonID"`
	Name       string `dynamodbav:"Name"`
	Color      string `dynamodbav:"Color,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// TeamRepository implements ports.TeamRepository.
type TeamRepository struct {
	base
}

// NewTeamRepository creates a team repository.
func NewTeamRepository(store kvstore.Store, logger *zap.Logger) *TeamRepository {
	return &TeamRepository{base: newBase(store, logger)}
}

// CreateTeam writes a team under its season.
func (r *TeamRepository) CreateTeam(ctx context.Context, input ports.CreateTeamInput) (*domain.Team, error) {
	if input.SeasonID == "" {
		return nil, appErrors.NewValidationError("season id is required")
	}
	if input.Name == "" {
		return nil, appErrors.NewValidationError("team name is required")
	}

	now := r.now()
	team := &domain.Team{
		TeamID:    uuid.NewString(),
		SeasonID:  input.SeasonID,
		Name:      input.Name,
		Color:     input.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	item, err := marshalItem(teamItem{
		PK:         kvstore.SeasonPK(team.SeasonID),
		SK:         kvstore.TeamSK(team.TeamID),
		EntityType: entityTeam,
		TeamID:     team.TeamID,
		SeasonID:   team.SeasonID,
		Name:       team.Name,
		Color:      team.Color,
		CreatedAt:  formatTime(now),
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("create team", err)
	}
	if err := r.store.Put(ctx, item, false); err != nil {
		return nil, appErrors.NewDatabaseError("create team", err)
	}

	r.logger.Info("Team created",
		zap.String("teamID", team.TeamID),
		zap.String("seasonID", team.SeasonID),
	)
	return team, nil
}

// GetTeam returns the team, or nil when absent.
func (r *TeamRepository) GetTeam(ctx context.Context, seasonID, teamID string) (*domain.Team, error) {
	if seasonID == "" || teamID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.SeasonPK(seasonID), SK: kvstore.TeamSK(teamID)})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get team", err)
	}
	var item teamItem
	ok, err := decodeItem(raw, entityTeam, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode team", err)
	}
	if !ok {
		return nil, nil
	}
	return teamFromItem(item), nil
}

// ListTeamsForSeason returns the season's teams in sort-key order.
func (r *TeamRepository) ListTeamsForSeason(ctx context.Context, seasonID string) ([]domain.Team, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.SeasonPK(seasonID), kvstore.TeamPrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list teams", err)
	}

	teams := make([]domain.Team, 0, len(rows))
	for _, raw := range rows {
		var item teamItem
		ok, err := decodeItem(raw, entityTeam, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode team", err)
		}
		if !ok {
			continue
		}
		teams = append(teams, *teamFromItem(item))
	}
	return teams, nil
}

func teamFromItem(item teamItem) *domain.Team {
	return &domain.Team{
		TeamID:    item.TeamID,
		SeasonID:  item.SeasonID,
		Name:      item.Name,
		Color:     item.Color,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}
