// Package kvstore provides the key-value persistence primitives the
// repositories are built on: primary-key get, conditional put, conditional
// update, delete, sort-key-prefix query and full-table scan. Conditional
// writes are the only mutual-exclusion primitive in the system.
package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConditionFailed is returned when a conditional Put or Update did not
// pass its condition. Callers that expect the race translate it; everything
// else treats it as a store failure.
var ErrConditionFailed = errors.New("kvstore: conditional check failed")

// Item is a raw stored item keyed by attribute name.
type Item map[string]types.AttributeValue

// Key identifies a single item.
type Key struct {
	PK string
	SK string
}

// UpdateCondition describes the guards applied to an Update. All listed
// conditions must hold for the update to take effect.
type UpdateCondition struct {
	// StringEquals requires each named attribute to equal the given string.
	StringEquals map[string]string

	// Absent requires each named attribute to not exist on the item.
	Absent []string

	// AtLeast requires each named numeric attribute to be >= the given value.
	AtLeast map[string]int64
}

// Empty reports whether the condition imposes no guards.
func (c UpdateCondition) Empty() bool {
	return len(c.StringEquals) == 0 && len(c.Absent) == 0 && len(c.AtLeast) == 0
}

// Store is the persistence collaborator shared by all repositories.
type Store interface {
	// Get returns the item for key, or nil if absent.
	Get(ctx context.Context, key Key) (Item, error)

	// Put writes an item. With ifNotExists set the write succeeds only when
	// no item exists under the same key, failing with ErrConditionFailed
	// otherwise.
	Put(ctx context.Context, item Item, ifNotExists bool) error

	// Update sets the given attributes on an existing item, guarded by cond.
	// Values are plain Go values marshaled by the implementation. A failed
	// guard (including an absent item) returns ErrConditionFailed.
	Update(ctx context.Context, key Key, set map[string]interface{}, cond UpdateCondition) error

	// Delete removes the item for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key Key) error

	// QueryPrefix returns all items under pk whose sort key begins with
	// skPrefix, in ascending sort-key order.
	QueryPrefix(ctx context.Context, pk, skPrefix string) ([]Item, error)

	// Scan returns every item in the table. Used only for derived views
	// whose access pattern has no key-design answer.
	Scan(ctx context.Context) ([]Item, error)
}

// Observer receives a callback per store operation, for metrics emission.
type Observer interface {
	ObserveStoreOperation(op string, duration time.Duration, err error)
}
