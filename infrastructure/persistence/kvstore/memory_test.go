package kvstore

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(pk, sk string, extra map[string]string) Item {
	item := Item{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
	for name, value := range extra {
		item[name] = &types.AttributeValueMemberS{Value: value}
	}
	return item
}

func TestMemoryStore_PutIfNotExists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testItem("p", "s", nil), true))
	assert.ErrorIs(t, store.Put(ctx, testItem("p", "s", nil), true), ErrConditionFailed)

	// Unconditional put overwrites.
	require.NoError(t, store.Put(ctx, testItem("p", "s", map[string]string{"Name": "new"}), false))
	got, err := store.Get(ctx, Key{PK: "p", SK: "s"})
	require.NoError(t, err)
	assert.Equal(t, "new", stringAttr(got, "Name"))
}

func TestMemoryStore_GetAbsentReturnsNil(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), Key{PK: "p", SK: "s"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_UpdateGuards(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	item := testItem("p", "s", map[string]string{"Hash": "h1"})
	item["Expires"] = &types.AttributeValueMemberN{Value: "100"}
	require.NoError(t, store.Put(ctx, item, false))

	// Absent item fails the guard.
	err := store.Update(ctx, Key{PK: "p", SK: "missing"}, map[string]interface{}{"X": "y"}, UpdateCondition{})
	assert.ErrorIs(t, err, ErrConditionFailed)

	// StringEquals mismatch.
	err = store.Update(ctx, Key{PK: "p", SK: "s"}, map[string]interface{}{"X": "y"},
		UpdateCondition{StringEquals: map[string]string{"Hash": "other"}})
	assert.ErrorIs(t, err, ErrConditionFailed)

	// AtLeast below threshold.
	err = store.Update(ctx, Key{PK: "p", SK: "s"}, map[string]interface{}{"X": "y"},
		UpdateCondition{AtLeast: map[string]int64{"Expires": 101}})
	assert.ErrorIs(t, err, ErrConditionFailed)

	// All guards hold: the update lands.
	err = store.Update(ctx, Key{PK: "p", SK: "s"}, map[string]interface{}{"Used": "now"},
		UpdateCondition{
			StringEquals: map[string]string{"Hash": "h1"},
			Absent:       []string{"Used"},
			AtLeast:      map[string]int64{"Expires": 100},
		})
	require.NoError(t, err)

	// The Absent guard now fails.
	err = store.Update(ctx, Key{PK: "p", SK: "s"}, map[string]interface{}{"Used": "again"},
		UpdateCondition{Absent: []string{"Used"}})
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestMemoryStore_QueryPrefixOrdersAscending(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testItem("p", "CHILD#b", nil), false))
	require.NoError(t, store.Put(ctx, testItem("p", "CHILD#a", nil), false))
	require.NoError(t, store.Put(ctx, testItem("p", "OTHER#x", nil), false))

	items, err := store.QueryPrefix(ctx, "p", "CHILD#")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CHILD#a", stringAttr(items[0], "SK"))
	assert.Equal(t, "CHILD#b", stringAttr(items[1], "SK"))
}

func TestMemoryStore_DeleteAbsentIsNoOp(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Delete(context.Background(), Key{PK: "p", SK: "s"}))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testItem("p", "s", map[string]string{"Name": "orig"}), false))

	got, err := store.Get(ctx, Key{PK: "p", SK: "s"})
	require.NoError(t, err)
	got["Name"] = &types.AttributeValueMemberS{Value: "mutated"}

	fresh, err := store.Get(ctx, Key{PK: "p", SK: "s"})
	require.NoError(t, err)
	assert.Equal(t, "orig", stringAttr(fresh, "Name"))
}
