package ports

import (
	"context"
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAlertReported(ctx context.Context, alert *domain.ParkingAlert) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching of fetched snapshots. Verdicts
// are never cached — only the zone/alert/service snapshots they are computed
// from.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
