package kvstore

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemoryStore is an in-memory Store used by tests. It honors the same
// conditional-write semantics as the DynamoDB implementation, including
// ErrConditionFailed on a failed guard.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]map[string]Item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]map[string]Item),
	}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, key Key) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partition, ok := s.items[key.PK]
	if !ok {
		return nil, nil
	}
	item, ok := partition[key.SK]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, item Item, ifNotExists bool) error {
	pk := stringAttr(item, "PK")
	sk := stringAttr(item, "SK")

	s.mu.Lock()
	defer s.mu.Unlock()

	partition, ok := s.items[pk]
	if !ok {
		partition = make(map[string]Item)
		s.items[pk] = partition
	}
	if ifNotExists {
		if _, exists := partition[sk]; exists {
			return ErrConditionFailed
		}
	}
	partition[sk] = copyItem(item)
	return nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(_ context.Context, key Key, set map[string]interface{}, cond UpdateCondition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition, ok := s.items[key.PK]
	if !ok {
		return ErrConditionFailed
	}
	item, ok := partition[key.SK]
	if !ok {
		return ErrConditionFailed
	}

	for name, expected := range cond.StringEquals {
		if stringAttr(item, name) != expected {
			return ErrConditionFailed
		}
	}
	for _, name := range cond.Absent {
		if _, exists := item[name]; exists {
			return ErrConditionFailed
		}
	}
	for name, min := range cond.AtLeast {
		if numberAttr(item, name) < min {
			return ErrConditionFailed
		}
	}

	for name, value := range set {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return err
		}
		item[name] = av
	}
	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if partition, ok := s.items[key.PK]; ok {
		delete(partition, key.SK)
		if len(partition) == 0 {
			delete(s.items, key.PK)
		}
	}
	return nil
}

// QueryPrefix implements Store.QueryPrefix.
func (s *MemoryStore) QueryPrefix(_ context.Context, pk, skPrefix string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partition, ok := s.items[pk]
	if !ok {
		return nil, nil
	}

	var sortKeys []string
	for sk := range partition {
		if len(sk) >= len(skPrefix) && sk[:len(skPrefix)] == skPrefix {
			sortKeys = append(sortKeys, sk)
		}
	}
	sort.Strings(sortKeys)

	items := make([]Item, 0, len(sortKeys))
	for _, sk := range sortKeys {
		items = append(items, copyItem(partition[sk]))
	}
	return items, nil
}

// Scan implements Store.Scan.
func (s *MemoryStore) Scan(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []Item
	for _, partition := range s.items {
		for _, item := range partition {
			items = append(items, copyItem(item))
		}
	}
	return items, nil
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, partition := range s.items {
		n += len(partition)
	}
	return n
}

func copyItem(item Item) Item {
	dup := make(Item, len(item))
	for name, value := range item {
		dup[name] = value
	}
	return dup
}

func stringAttr(item Item, name string) string {
	if av, ok := item[name].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}

func numberAttr(item Item, name string) int64 {
	if av, ok := item[name].(*types.AttributeValueMemberN); ok {
		n, err := strconv.ParseInt(av.Value, 10, 64)
		if err == nil {
			return n
		}
	}
	return 0
}
