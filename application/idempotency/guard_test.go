package idempotency

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/domain"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	"rinkhq-backend/infrastructure/persistence/repository"
	appErrors "rinkhq-backend/pkg/errors"
)

func newTestGuard() *Guard {
	store := kvstore.NewMemoryStore()
	records := repository.NewIdempotencyRepository(store, zap.NewNop())
	return NewGuard(records, zap.NewNop())
}

func countingMutate(calls *int, status int, body string) MutateFunc {
	return func(context.Context) (int, string, error) {
		*calls++
		return status, body, nil
	}
}

func TestExecute_NoKeyRunsDirectly(t *testing.T) {
	guard := newTestGuard()
	calls := 0

	for i := 0; i < 2; i++ {
		result, err := guard.Execute(context.Background(), "scope", "", []byte(`{}`), countingMutate(&calls, 201, "ok"))
		require.NoError(t, err)
		assert.Equal(t, 201, result.StatusCode)
		assert.False(t, result.Replayed)
	}
	// Without a key every call mutates.
	assert.Equal(t, 2, calls)
}

func TestExecute_ReplayReturnsStoredResponse(t *testing.T) {
	guard := newTestGuard()
	calls := 0
	payload := []byte(`{"name":"Sunday Night"}`)

	first, err := guard.Execute(context.Background(), "scope", "key-1", payload, countingMutate(&calls, 201, `{"id":"l-1"}`))
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := guard.Execute(context.Background(), "scope", "key-1", payload, countingMutate(&calls, 500, "must not run"))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 1, calls)
}

func TestExecute_KeyOrderInsensitiveReplay(t *testing.T) {
	guard := newTestGuard()
	calls := 0

	_, err := guard.Execute(context.Background(), "scope", "key-1",
		[]byte(`{"a":1,"b":{"x":true,"y":null}}`), countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)

	result, err := guard.Execute(context.Background(), "scope", "key-1",
		[]byte(`{"b":{"y":null,"x":true},"a":1}`), countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, 1, calls)
}

func TestExecute_DifferentPayloadConflicts(t *testing.T) {
	guard := newTestGuard()
	calls := 0

	_, err := guard.Execute(context.Background(), "scope", "key-1", []byte(`{"name":"a"}`), countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)

	_, err = guard.Execute(context.Background(), "scope", "key-1", []byte(`{"name":"b"}`), countingMutate(&calls, 201, "ok"))
	require.Error(t, err)
	assert.True(t, appErrors.IsConflict(err))
	appErr, ok := err.(*appErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeIdempotencyConflict, appErr.Code)
	assert.Equal(t, 1, calls)
}

func TestExecute_ArrayOrderMatters(t *testing.T) {
	guard := newTestGuard()
	calls := 0

	_, err := guard.Execute(context.Background(), "scope", "key-1", []byte(`{"ids":[1,2]}`), countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)

	_, err = guard.Execute(context.Background(), "scope", "key-1", []byte(`{"ids":[2,1]}`), countingMutate(&calls, 201, "ok"))
	assert.True(t, appErrors.IsConflict(err))
}

func TestExecute_ScopesAreIsolated(t *testing.T) {
	guard := newTestGuard()
	calls := 0
	payload := []byte(`{"name":"a"}`)

	_, err := guard.Execute(context.Background(), "user-1#POST /leagues", "key-1", payload, countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)
	_, err = guard.Execute(context.Background(), "user-2#POST /leagues", "key-1", payload, countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestExecute_KeyTooLongRejected(t *testing.T) {
	guard := newTestGuard()
	calls := 0

	_, err := guard.Execute(context.Background(), "scope", strings.Repeat("k", MaxKeyLength+1), []byte(`{}`), countingMutate(&calls, 201, "ok"))
	assert.True(t, appErrors.IsValidation(err))
	assert.Equal(t, 0, calls)
}

// racingStore wraps a real record store so a concurrent winner can land its
// record between the caller's GetRecord and CreateRecord.
type racingStore struct {
	ports.IdempotencyStore
	beforeCreate func(ctx context.Context)
	createErr    error
}

func (s *racingStore) CreateRecord(ctx context.Context, record domain.IdempotencyRecord) error {
	if s.beforeCreate != nil {
		s.beforeCreate(ctx)
	}
	if s.createErr != nil {
		return s.createErr
	}
	return s.IdempotencyStore.CreateRecord(ctx, record)
}

func TestExecute_LostRaceReplaysWinner(t *testing.T) {
	records := repository.NewIdempotencyRepository(kvstore.NewMemoryStore(), zap.NewNop())
	payload := []byte(`{"name":"Sunday Night"}`)
	hash, err := requestHash("scope", payload)
	require.NoError(t, err)

	rs := &racingStore{IdempotencyStore: records}
	rs.beforeCreate = func(ctx context.Context) {
		rs.beforeCreate = nil
		require.NoError(t, records.CreateRecord(ctx, domain.IdempotencyRecord{
			Scope:        "scope",
			Key:          "key-1",
			RequestHash:  hash,
			StatusCode:   201,
			ResponseBody: `{"id":"winner"}`,
		}))
	}
	guard := NewGuard(rs, zap.NewNop())

	calls := 0
	result, err := guard.Execute(context.Background(), "scope", "key-1", payload, countingMutate(&calls, 201, `{"id":"loser"}`))
	require.NoError(t, err)

	// The loser's mutation already ran, but the winner's record is the
	// authority for the response.
	assert.Equal(t, 1, calls)
	assert.True(t, result.Replayed)
	assert.Equal(t, 201, result.StatusCode)
	assert.Equal(t, `{"id":"winner"}`, result.Body)
}

func TestExecute_LostRaceWithDifferentPayloadConflicts(t *testing.T) {
	records := repository.NewIdempotencyRepository(kvstore.NewMemoryStore(), zap.NewNop())

	rs := &racingStore{IdempotencyStore: records}
	rs.beforeCreate = func(ctx context.Context) {
		rs.beforeCreate = nil
		require.NoError(t, records.CreateRecord(ctx, domain.IdempotencyRecord{
			Scope:        "scope",
			Key:          "key-1",
			RequestHash:  "some-other-hash",
			StatusCode:   201,
			ResponseBody: `{"id":"winner"}`,
		}))
	}
	guard := NewGuard(rs, zap.NewNop())

	calls := 0
	_, err := guard.Execute(context.Background(), "scope", "key-1", []byte(`{"name":"a"}`), countingMutate(&calls, 201, "ok"))
	require.Error(t, err)
	assert.True(t, appErrors.IsConflict(err))
	appErr, ok := err.(*appErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeIdempotencyConflict, appErr.Code)
}

func TestExecute_WinnerRecordVanishedFallsBackToOwnResult(t *testing.T) {
	records := repository.NewIdempotencyRepository(kvstore.NewMemoryStore(), zap.NewNop())

	// The create reports a conflict but the re-fetch finds nothing, as when
	// the winner's record expires between the two calls.
	rs := &racingStore{
		IdempotencyStore: records,
		createErr:        appErrors.NewConflictError("idempotency record already exists"),
	}
	guard := NewGuard(rs, zap.NewNop())

	calls := 0
	result, err := guard.Execute(context.Background(), "scope", "key-1", []byte(`{}`), countingMutate(&calls, 201, `{"id":"own"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, result.Replayed)
	assert.Equal(t, 201, result.StatusCode)
	assert.Equal(t, `{"id":"own"}`, result.Body)
}

func TestExecute_MutationErrorLeavesNoRecord(t *testing.T) {
	guard := newTestGuard()

	boom := appErrors.NewInternalError("boom")
	_, err := guard.Execute(context.Background(), "scope", "key-1", []byte(`{}`),
		func(context.Context) (int, string, error) { return 0, "", boom })
	require.Error(t, err)

	// A failed mutation must not poison the key: the retry runs it again.
	calls := 0
	result, err := guard.Execute(context.Background(), "scope", "key-1", []byte(`{}`), countingMutate(&calls, 201, "ok"))
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, 1, calls)
}

func TestCanonicalize_SortsNestedKeys(t *testing.T) {
	got, err := canonicalize(map[string]interface{}{
		"b": map[string]interface{}{"z": 1.0, "a": "x"},
		"a": []interface{}{3.0, 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[3,1],"b":{"a":"x","z":1}}`, got)
}

func TestRequestHash_NonJSONPayloadStillHashes(t *testing.T) {
	a, err := requestHash("scope", []byte("not json"))
	require.NoError(t, err)
	b, err := requestHash("scope", []byte("not json"))
	require.NoError(t, err)
	c, err := requestHash("scope", []byte("different"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
