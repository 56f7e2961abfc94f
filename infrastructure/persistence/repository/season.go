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

// seasonItem is the stored shape of both the canonical season record and
// its denormalized by-league copy.
type seasonItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SeasonID   string `dynamodbav:"SeasonID"`
	LeagueID   string `dynamodbav:"LeagueID"`
	Name       string `dynamodbav:"Name"`
	StartsOn   string `dynamodbav:"StartsOn,omitempty"`
	EndsOn     string `dynamodbav:"EndsOn,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// SeasonRepository implements ports.SeasonRepository.
type SeasonRepository struct {
	base
}

// NewSeasonRepository creates a season repository.
func NewSeasonRepository(store kvstore.Store, logger *zap.Logger) *SeasonRepository {
	return &SeasonRepository{base: newBase(store, logger)}
}

// CreateSeason writes the canonical record and the by-league copy with the
// same timestamps. Two-step write; both records carry the season id, so a
// crash between the steps is repairable.
func (r *SeasonRepository) CreateSeason(ctx context.Context, input ports.CreateSeasonInput) (*domain.Season, error) {
	if input.LeagueID == "" {
		return nil, appErrors.NewValidationError("league id is required")
	}
	if input.Name == "" {
		return nil, appErrors.NewValidationError("season name is required")
	}

	now := r.now()
	season := &domain.Season{
		SeasonID:  uuid.NewString(),
		LeagueID:  input.LeagueID,
		Name:      input.Name,
		StartsOn:  input.StartsOn,
		EndsOn:    input.EndsOn,
		CreatedAt: now,
		UpdatedAt: now,
	}

	canonical := seasonToItem(season)
	canonical.PK = kvstore.SeasonPK(season.SeasonID)
	canonical.SK = kvstore.SortKeyMetadata

	byLeague := seasonToItem(season)
	byLeague.PK = kvstore.LeaguePK(season.LeagueID)
	byLeague.SK = kvstore.SeasonSK(season.SeasonID)

	for _, record := range []seasonItem{canonical, byLeague} {
		item, err := marshalItem(record)
		if err != nil {
			return nil, appErrors.NewDatabaseError("create season", err)
		}
		if err := r.store.Put(ctx, item, false); err != nil {
			return nil, appErrors.NewDatabaseError("create season", err)
		}
	}

	r.logger.Info("Season created",
		zap.String("seasonID", season.SeasonID),
		zap.String("leagueID", season.LeagueID),
	)
	return season, nil
}

// GetSeason returns the canonical season record, or nil when absent.
func (r *SeasonRepository) GetSeason(ctx context.Context, seasonID string) (*domain.Season, error) {
	if seasonID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.SeasonPK(seasonID), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get season", err)
	}
	var item seasonItem
	ok, err := decodeItem(raw, entitySeason, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode season", err)
	}
	if !ok {
		return nil, nil
	}
	return seasonFromItem(item), nil
}

// ListSeasonsForLeague returns the league's seasons from the denormalized
// copies, in sort-key order.
func (r *SeasonRepository) ListSeasonsForLeague(ctx context.Context, leagueID string) ([]domain.Season, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.LeaguePK(leagueID), kvstore.SeasonPrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list seasons", err)
	}

	seasons := make([]domain.Season, 0, len(rows))
	for _, raw := range rows {
		var item seasonItem
		ok, err := decodeItem(raw, entitySeason, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode season", err)
		}
		if !ok {
			continue
		}
		seasons = append(seasons, *seasonFromItem(item))
	}
	return seasons, nil
}

// DeleteSeason removes both season records. It refuses to delete while any
// session exists under the season.
func (r *SeasonRepository) DeleteSeason(ctx context.Context, seasonID string) error {
	season, err := r.GetSeason(ctx, seasonID)
	if err != nil {
		return err
	}
	if season == nil {
		return appErrors.NewNotFoundError("season")
	}

	sessions, err := r.store.QueryPrefix(ctx, kvstore.SeasonPK(seasonID), kvstore.SessionPrefix)
	if err != nil {
		return appErrors.NewDatabaseError("list season sessions", err)
	}
	if len(sessions) > 0 {
		return appErrors.NewConflictError("cannot delete season while sessions exist")
	}

	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.SeasonPK(seasonID), SK: kvstore.SortKeyMetadata}); err != nil {
		return appErrors.NewDatabaseError("delete season", err)
	}
	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.LeaguePK(season.LeagueID), SK: kvstore.SeasonSK(seasonID)}); err != nil {
		return appErrors.NewDatabaseError("delete season copy", err)
	}

	r.logger.Info("Season deleted", zap.String("seasonID", seasonID))
	return nil
}

func seasonToItem(season *domain.Season) seasonItem {
	return seasonItem{
		EntityType: entitySeason,
		SeasonID:   season.SeasonID,
		LeagueID:   season.LeagueID,
		Name:       season.Name,
		StartsOn:   season.StartsOn,
		EndsOn:     season.EndsOn,
		CreatedAt:  formatTime(season.CreatedAt),
		UpdatedAt:  formatTime(season.UpdatedAt),
	}
}

func seasonFromItem(item seasonItem) *domain.Season {
	return &domain.Season{
		SeasonID:  item.SeasonID,
		LeagueID:  item.LeagueID,
		Name:      item.Name,
		StartsOn:  item.StartsOn,
		EndsOn:    item.EndsOn,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}
