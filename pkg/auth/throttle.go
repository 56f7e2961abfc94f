// Package auth holds the throttle that guards magic-link issuance. Sign-in
// starts are unauthenticated, so without a cap a single address can be
// mail-bombed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Limiter decides whether a magic-link start for the given key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// DynamoLimiter counts starts per key per fixed window in the application
// table, so the limit holds across Lambda invocations. A nil client allows
// everything, which keeps local development working without AWS.
type DynamoLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
}

type throttleEntry struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Count     int    `dynamodbav:"Count"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt"`
}

// NewDynamoLimiter creates a limiter allowing limit starts per window.
func NewDynamoLimiter(client *dynamodb.Client, tableName string, limit int, window time.Duration) *DynamoLimiter {
	return &DynamoLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
	}
}

// Allow atomically increments the window counter and reports whether the
// count is still within the limit. Store errors fail open so an AWS outage
// cannot lock everyone out of sign-in.
func (l *DynamoLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil {
		return true, nil
	}

	windowStart := time.Now().Truncate(l.window)
	pk := fmt.Sprintf("THROTTLE#%s#%d", key, windowStart.Unix())

	out, err := l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression:    aws.String("SET #count = if_not_exists(#count, :zero) + :one, ExpiresAt = :expires"),
		ConditionExpression: aws.String("attribute_not_exists(#count) OR #count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#count": "Count",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":    &types.AttributeValueMemberN{Value: "0"},
			":one":     &types.AttributeValueMemberN{Value: "1"},
			":limit":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", l.limit)},
			":expires": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", windowStart.Add(l.window+time.Hour).Unix())},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return true, fmt.Errorf("throttle update (failing open): %w", err)
	}

	var entry throttleEntry
	if err := attributevalue.UnmarshalMap(out.Attributes, &entry); err != nil {
		return true, fmt.Errorf("decode throttle entry (failing open): %w", err)
	}
	return entry.Count <= l.limit, nil
}

// MemoryLimiter is the in-process equivalent for tests and single-instance
// development runs.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*memoryWindow
}

type memoryWindow struct {
	start time.Time
	count int
}

// NewMemoryLimiter creates an in-memory limiter allowing limit starts per
// window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*memoryWindow),
	}
}

// Allow reports whether the key is still within its window limit.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.now().Truncate(l.window)
	w, ok := l.windows[key]
	if !ok || !w.start.Equal(start) {
		w = &memoryWindow{start: start}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}
