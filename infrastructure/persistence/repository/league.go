package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// leagueItem is the stored shape of a league record.
type leagueItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	LeagueID   string `dynamodbav:"LeagueID"`
	Name       string `dynamodbav:"Name"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// LeagueRepository implements ports.LeagueRepository.
type LeagueRepository struct {
	base
}

// NewLeagueRepository creates a league repository.
func NewLeagueRepository(store kvstore.Store, logger *zap.Logger) *LeagueRepository {
	return &LeagueRepository{base: newBase(store, logger)}
}

// CreateLeague writes the league record and grants the creator the admin
// role on it.
func (r *LeagueRepository) CreateLeague(ctx context.Context, input ports.CreateLeagueInput) (*domain.League, error) {
	if input.Name == "" {
		return nil, appErrors.NewValidationError("league name is required")
	}
	if input.CreatorUserID == "" {
		return nil, appErrors.NewValidationError("creator user id is required")
	}

	now := r.now()
	league := &domain.League{
		LeagueID:  uuid.NewString(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	item, err := marshalItem(leagueItem{
		PK:         kvstore.LeaguePK(league.LeagueID),
		SK:         kvstore.SortKeyMetadata,
		EntityType: entityLeague,
		LeagueID:   league.LeagueID,
		Name:       league.Name,
		CreatedAt:  formatTime(now),
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("create league", err)
	}
	if err := r.store.Put(ctx, item, true); err != nil {
		if errors.Is(err, kvstore.ErrConditionFailed) {
			return nil, appErrors.NewConflictError("league already exists")
		}
		return nil, appErrors.NewDatabaseError("create league", err)
	}

	grant, err := marshalItem(grantItem{
		PK:         kvstore.LeaguePK(league.LeagueID),
		SK:         kvstore.ACLSK(input.CreatorUserID),
		EntityType: entityACLGrant,
		LeagueID:   league.LeagueID,
		UserID:     input.CreatorUserID,
		Role:       string(domain.RoleAdmin),
		CreatedAt:  formatTime(now),
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("grant creator role", err)
	}
	if err := r.store.Put(ctx, grant, false); err != nil {
		return nil, appErrors.NewDatabaseError("grant creator role", err)
	}

	r.logger.Info("League created",
		zap.String("leagueID", league.LeagueID),
		zap.String("creator", input.CreatorUserID),
	)
	return league, nil
}

// GetLeague returns the league, or nil when absent.
func (r *LeagueRepository) GetLeague(ctx context.Context, leagueID string) (*domain.League, error) {
	if leagueID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.LeaguePK(leagueID), SK: kvstore.SortKeyMetadata})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get league", err)
	}
	var item leagueItem
	ok, err := decodeItem(raw, entityLeague, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode league", err)
	}
	if !ok {
		return nil, nil
	}
	return leagueFromItem(item), nil
}

// DeleteLeague removes the league and its ACL grant rows. It refuses to
// delete while any season exists under the league.
func (r *LeagueRepository) DeleteLeague(ctx context.Context, leagueID string) error {
	league, err := r.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if league == nil {
		return appErrors.NewNotFoundError("league")
	}

	seasons, err := r.store.QueryPrefix(ctx, kvstore.LeaguePK(leagueID), kvstore.SeasonPrefix)
	if err != nil {
		return appErrors.NewDatabaseError("list league seasons", err)
	}
	if len(seasons) > 0 {
		return appErrors.NewConflictError("cannot delete league while seasons exist")
	}

	grants, err := r.store.QueryPrefix(ctx, kvstore.LeaguePK(leagueID), kvstore.ACLPrefix)
	if err != nil {
		return appErrors.NewDatabaseError("list league grants", err)
	}
	for _, raw := range grants {
		var item grantItem
		ok, err := decodeItem(raw, entityACLGrant, &item)
		if err != nil || !ok {
			continue
		}
		key := kvstore.Key{PK: item.PK, SK: item.SK}
		if err := r.store.Delete(ctx, key); err != nil {
			return appErrors.NewDatabaseError("delete league grant", err)
		}
	}

	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.LeaguePK(leagueID), SK: kvstore.SortKeyMetadata}); err != nil {
		return appErrors.NewDatabaseError("delete league", err)
	}

	r.logger.Info("League deleted", zap.String("leagueID", leagueID))
	return nil
}

// ListLeaguesForUser walks every grant row in the table, filters by user
// and returns the user's leagues sorted by name. A full scan is acceptable
// at this system's scale; a user-partitioned index would replace it beyond
// that.
func (r *LeagueRepository) ListLeaguesForUser(ctx context.Context, userID string) ([]domain.League, error) {
	if userID == "" {
		return nil, appErrors.NewValidationError("user id is required")
	}

	rows, err := r.store.Scan(ctx)
	if err != nil {
		return nil, appErrors.NewDatabaseError("scan grants", err)
	}

	seen := make(map[string]bool)
	var leagues []domain.League
	for _, raw := range rows {
		var grant grantItem
		ok, err := decodeItem(raw, entityACLGrant, &grant)
		if err != nil || !ok || grant.UserID != userID || seen[grant.LeagueID] {
			continue
		}
		seen[grant.LeagueID] = true

		league, err := r.GetLeague(ctx, grant.LeagueID)
		if err != nil {
			return nil, err
		}
		if league == nil {
			// Grant row outlived its league; skip rather than fail the
			// listing.
			r.logger.Warn("Dangling ACL grant", zap.String("leagueID", grant.LeagueID))
			continue
		}
		leagues = append(leagues, *league)
	}

	sort.Slice(leagues, func(i, j int) bool {
		if leagues[i].Name != leagues[j].Name {
			return leagues[i].Name < leagues[j].Name
		}
		return leagues[i].LeagueID < leagues[j].LeagueID
	})
	return leagues, nil
}

func leagueFromItem(item leagueItem) *domain.League {
	return &domain.League{
		LeagueID:  item.LeagueID,
		Name:      item.Name,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}
