package ports

import (
	"context"

	"rinkhq-backend/domain/events"
)

// EventBus publishes domain events after successful mutations. Publishing is
// best-effort: a failed publish is logged, never surfaced to the client.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
