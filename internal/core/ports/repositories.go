package ports

import (
	"context"
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
)

// ZoneRepository persists parking zones.
//
// FindNear may over-return: it must include every zone whose geometry could
// plausibly intersect the radius, and callers re-filter precisely via
// containment.
type ZoneRepository interface {
	Upsert(ctx context.Context, zone *domain.ParkingZone) error
	GetByID(ctx context.Context, id int64) (*domain.ParkingZone, error)
	FindNear(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.ParkingZone, error)
}

// AlertRepository persists parking alerts. Alerts are insert-only; expiry is
// a read-time filter and DeleteExpired exists solely for housekeeping.
type AlertRepository interface {
	Insert(ctx context.Context, alert *domain.ParkingAlert) error
	FindNear(ctx context.Context, lat, lng, radiusMeters float64, at time.Time, limit int) ([]domain.ParkingAlert, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ServiceRepository persists service points of interest.
type ServiceRepository interface {
	Upsert(ctx context.Context, svc *domain.Service) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, category string, limit int) ([]domain.Service, error)
}

// EmergencyResourceRepository persists emergency resources (shelter intake,
// crisis lines, urgent medical).
type EmergencyResourceRepository interface {
	FindNearest(ctx context.Context, lat, lng float64, resourceType string, limit int) ([]domain.EmergencyResource, error)
}
