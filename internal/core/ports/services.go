package ports

import "context"

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAmenitiesImported(ctx context.Context, batchID string, count int) error
	PublishDatasetRefresh(ctx context.Context, dataset string) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeAmenitiesImported(ctx context.Context, handler func(ctx context.Context, batchID string, count int) error) error
	SubscribeDatasetRefresh(ctx context.Context, handler func(ctx context.Context, dataset string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
