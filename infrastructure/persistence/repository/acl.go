package repository

import (
	"context"

	"go.uber.org/zap"

	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	appErrors "rinkhq-backend/pkg/errors"
)

// grantItem is the stored shape of a league ACL grant row.
type grantItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	LeagueID   string `dynamodbav:"LeagueID"`
	UserID     string `dynamodbav:"UserID"`
	Role       string `dynamodbav:"Role"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// ACLRepository implements ports.ACLRepository.
type ACLRepository struct {
	base
}

// NewACLRepository creates an ACL repository.
func NewACLRepository(store kvstore.Store, logger *zap.Logger) *ACLRepository {
	return &ACLRepository{base: newBase(store, logger)}
}

// GrantRole writes or updates a user's role within a league. A re-grant
// keeps the original creation timestamp.
func (r *ACLRepository) GrantRole(ctx context.Context, leagueID, userID string, role domain.Role) (*domain.Grant, error) {
	if leagueID == "" || userID == "" {
		return nil, appErrors.NewValidationError("league id and user id are required")
	}
	if !role.Valid() {
		return nil, appErrors.NewValidationError("unknown role: " + string(role))
	}

	now := r.now()
	createdAt := formatTime(now)
	if existing, err := r.GetGrant(ctx, leagueID, userID); err != nil {
		return nil, err
	} else if existing != nil {
		createdAt = formatTime(existing.CreatedAt)
	}

	item, err := marshalItem(grantItem{
		PK:         kvstore.LeaguePK(leagueID),
		SK:         kvstore.ACLSK(userID),
		EntityType: entityACLGrant,
		LeagueID:   leagueID,
		UserID:     userID,
		Role:       string(role),
		CreatedAt:  createdAt,
		UpdatedAt:  formatTime(now),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("grant role", err)
	}
	if err := r.store.Put(ctx, item, false); err != nil {
		return nil, appErrors.NewDatabaseError("grant role", err)
	}

	r.logger.Info("Role granted",
		zap.String("leagueID", leagueID),
		zap.String("userID", userID),
		zap.String("role", string(role)),
	)
	return &domain.Grant{
		LeagueID:  leagueID,
		UserID:    userID,
		Role:      role,
		CreatedAt: parseTime(createdAt),
		UpdatedAt: now,
	}, nil
}

// GetGrant returns the user's grant on the league, or nil when absent.
func (r *ACLRepository) GetGrant(ctx context.Context, leagueID, userID string) (*domain.Grant, error) {
	if leagueID == "" || userID == "" {
		return nil, nil
	}
	raw, err := r.store.Get(ctx, kvstore.Key{PK: kvstore.LeaguePK(leagueID), SK: kvstore.ACLSK(userID)})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get grant", err)
	}
	var item grantItem
	ok, err := decodeItem(raw, entityACLGrant, &item)
	if err != nil {
		return nil, appErrors.NewDatabaseError("decode grant", err)
	}
	if !ok {
		return nil, nil
	}
	return grantFromItem(item), nil
}

// ListGrantsForLeague returns every grant row under the league.
func (r *ACLRepository) ListGrantsForLeague(ctx context.Context, leagueID string) ([]domain.Grant, error) {
	rows, err := r.store.QueryPrefix(ctx, kvstore.LeaguePK(leagueID), kvstore.ACLPrefix)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list grants", err)
	}

	grants := make([]domain.Grant, 0, len(rows))
	for _, raw := range rows {
		var item grantItem
		ok, err := decodeItem(raw, entityACLGrant, &item)
		if err != nil {
			return nil, appErrors.NewDatabaseError("decode grant", err)
		}
		if !ok {
			continue
		}
		grants = append(grants, *grantFromItem(item))
	}
	return grants, nil
}

// RevokeGrant removes a user's grant. Revoking an absent grant is a no-op.
func (r *ACLRepository) RevokeGrant(ctx context.Context, leagueID, userID string) error {
	if leagueID == "" || userID == "" {
		return appErrors.NewValidationError("league id and user id are required")
	}
	if err := r.store.Delete(ctx, kvstore.Key{PK: kvstore.LeaguePK(leagueID), SK: kvstore.ACLSK(userID)}); err != nil {
		return appErrors.NewDatabaseError("revoke grant", err)
	}
	return nil
}

func grantFromItem(item grantItem) *domain.Grant {
	return &domain.Grant{
		LeagueID:  item.LeagueID,
		UserID:    item.UserID,
		Role:      domain.Role(item.Role),
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}
