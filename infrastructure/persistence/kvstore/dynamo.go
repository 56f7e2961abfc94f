package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DynamoStore implements Store on a single DynamoDB table with a composite
// (PK, SK) primary key. All calls go through a circuit breaker; expected
// condition-check failures do not count against it.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
	breaker   *gobreaker.CircuitBreaker
	observer  Observer
}

// NewDynamoStore creates a DynamoDB-backed store. The observer may be nil.
func NewDynamoStore(client *dynamodb.Client, tableName string, logger *zap.Logger, observer Observer) *DynamoStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "dynamodb:" + tableName,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A failed conditional write is an answer, not an outage.
			return err == nil || errors.Is(err, ErrConditionFailed)
		},
	})

	return &DynamoStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
		breaker:   breaker,
		observer:  observer,
	}
}

// Get implements Store.Get.
func (s *DynamoStore) Get(ctx context.Context, key Key) (Item, error) {
	var item Item
	err := s.do(ctx, "get", func() error {
		out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key:       keyAttributes(key),
		})
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}
		if len(out.Item) > 0 {
			item = Item(out.Item)
		}
		return nil
	})
	return item, err
}

// Put implements Store.Put.
func (s *DynamoStore) Put(ctx context.Context, item Item, ifNotExists bool) error {
	return s.do(ctx, "put", func() error {
		input := &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      item,
		}
		if ifNotExists {
			input.ConditionExpression = aws.String("attribute_not_exists(PK)")
		}

		if _, err := s.client.PutItem(ctx, input); err != nil {
			if isConditionFailure(err) {
				return ErrConditionFailed
			}
			return fmt.Errorf("failed to put item: %w", err)
		}
		return nil
	})
}

// Update implements Store.Update.
func (s *DynamoStore) Update(ctx context.Context, key Key, set map[string]interface{}, cond UpdateCondition) error {
	return s.do(ctx, "update", func() error {
		update := expression.UpdateBuilder{}
		for name, value := range set {
			update = update.Set(expression.Name(name), expression.Value(value))
		}

		// Updating an absent item must never upsert one.
		condition := expression.Name("PK").AttributeExists()
		for name, value := range cond.StringEquals {
			condition = condition.And(expression.Name(name).Equal(expression.Value(value)))
		}
		for _, name := range cond.Absent {
			condition = condition.And(expression.Name(name).AttributeNotExists())
		}
		for name, min := range cond.AtLeast {
			condition = condition.And(expression.Name(name).GreaterThanEqual(expression.Value(min)))
		}

		expr, err := expression.NewBuilder().
			WithUpdate(update).
			WithCondition(condition).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build update expression: %w", err)
		}

		_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.tableName),
			Key:                       keyAttributes(key),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			if isConditionFailure(err) {
				return ErrConditionFailed
			}
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
}

// Delete implements Store.Delete.
func (s *DynamoStore) Delete(ctx context.Context, key Key) error {
	return s.do(ctx, "delete", func() error {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       keyAttributes(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

// QueryPrefix implements Store.QueryPrefix. Results come back in ascending
// sort-key order, paging through until the query is exhausted.
func (s *DynamoStore) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	var items []Item
	err := s.do(ctx, "query", func() error {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
				":sk": &types.AttributeValueMemberS{Value: skPrefix},
			},
		}

		for {
			out, err := s.client.Query(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to query items: %w", err)
			}
			for _, raw := range out.Items {
				items = append(items, Item(raw))
			}
			if out.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = out.LastEvaluatedKey
		}
	})
	return items, err
}

// Scan implements Store.Scan.
func (s *DynamoStore) Scan(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.do(ctx, "scan", func() error {
		input := &dynamodb.ScanInput{
			TableName: aws.String(s.tableName),
		}

		for {
			out, err := s.client.Scan(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to scan table: %w", err)
			}
			for _, raw := range out.Items {
				items = append(items, Item(raw))
			}
			if out.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = out.LastEvaluatedKey
		}
	})
	return items, err
}

// do runs a store operation through the breaker and reports it to the
// observer.
func (s *DynamoStore) do(_ context.Context, op string, fn func() error) error {
	start := time.Now()
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if s.observer != nil {
		s.observer.ObserveStoreOperation(op, time.Since(start), err)
	}
	if err != nil && !errors.Is(err, ErrConditionFailed) {
		fields := []zap.Field{zap.String("op", op), zap.Error(err)}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, zap.String("api_error_code", apiErr.ErrorCode()))
		}
		s.logger.Warn("Store operation failed", fields...)
	}
	return err
}

func keyAttributes(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: key.PK},
		"SK": &types.AttributeValueMemberS{Value: key.SK},
	}
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
