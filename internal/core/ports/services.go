package ports

import (
	"context"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// SiteCatalog is the data-fetching collaborator of the map core. Both
// collections can be fetched independently so the store can issue the two
// calls concurrently and await them jointly.
type SiteCatalog interface {
	ProductionEntities(ctx context.Context) ([]domain.MapEntity, error)
	ConsumptionEntities(ctx context.Context) ([]domain.MapEntity, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRefresh(ctx context.Context, ev *domain.RefreshEvent) error
	PublishReading(ctx context.Context, r *domain.SiteReading) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRefresh(ctx context.Context, handler func(ctx context.Context, ev *domain.RefreshEvent) error) error
	SubscribeReadings(ctx context.Context, handler func(ctx context.Context, r *domain.SiteReading) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
