// Package repository implements the entity repositories on top of the
// kvstore primitives. It owns the single-table layout: canonical records,
// denormalized copies, and the invariants the store cannot enforce
// (referential-integrity guards, cascades, goal-event validation).
package repository

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"rinkhq-backend/infrastructure/persistence/kvstore"
)

// Entity type tags. Every stored item carries one; reads reject items whose
// tag does not match the expected type, so a key collision across entity
// kinds surfaces as "absent" rather than a mis-decoded record. Denormalized
// copies share their canonical record's tag.
const (
	entityLeague      = "LEAGUE"
	entitySeason      = "SEASON"
	entityTeam        = "TEAM"
	entitySession     = "SESSION"
	entityGame        = "GAME"
	entityPlayer      = "PLAYER"
	entityACLGrant    = "ACL_GRANT"
	entityRoster      = "ROSTER"
	entityGoalEvent   = "GOAL_EVENT"
	entityIdempotency = "IDEMPOTENCY"
	entityMagicToken  = "AUTH_MAGIC"
	entityAuthSession = "AUTH_SESSION"
)

type base struct {
	store  kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

func newBase(store kvstore.Store, logger *zap.Logger) base {
	return base{
		store:  store,
		logger: logger,
		// Truncated to seconds so timestamps survive the RFC3339 round trip.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// marshalItem converts an item struct into a raw store item.
func marshalItem(v interface{}) (kvstore.Item, error) {
	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, err
	}
	return kvstore.Item(av), nil
}

// decodeItem unmarshals item into out when the stored entity type matches
// wantType. It reports false for an absent item or a tag mismatch.
func decodeItem(item kvstore.Item, wantType string, out interface{}) (bool, error) {
	if item == nil {
		return false, nil
	}
	tag, ok := item["EntityType"].(*types.AttributeValueMemberS)
	if !ok || tag.Value != wantType {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return false, err
	}
	return true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
