package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/core/ports"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
	"github.com/sfhaven/haven/internal/pkg/metrics"
)

const (
	defaultServiceRadiusMeters = 5000
	maxServiceRadiusMeters     = 50000
	maxServiceResults          = 50

	// offlineBundleVersion tags the snapshot format handed to clients that
	// cache it for connectivity gaps.
	offlineBundleVersion = "1.0"
)

// ServiceService handles service point-of-interest lookups.
type ServiceService struct {
	services ports.ServiceRepository
	cache    ports.CacheService
}

// NewServiceService creates a new ServiceService.
func NewServiceService(services ports.ServiceRepository, cache ports.CacheService) *ServiceService {
	return &ServiceService{services: services, cache: cache}
}

// FindNearby returns active services within radiusMeters, nearest first,
// optionally filtered by category. The repository over-returns by bounding
// area; precise radius filtering and ranking happen here.
func (s *ServiceService) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, category string, limit int) ([]domain.Service, error) {
	center := domain.GeoPoint{Lat: lat, Lng: lng}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultServiceRadiusMeters
	}
	if radiusMeters > maxServiceRadiusMeters {
		radiusMeters = maxServiceRadiusMeters
	}
	if limit <= 0 || limit > maxServiceResults {
		limit = maxServiceResults
	}

	cacheKey := fmt.Sprintf("services:near:%.4f:%.4f:%.0f:%s:%d", lat, lng, radiusMeters, category, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			metrics.CacheHits.WithLabelValues("services_near").Inc()
			var services []domain.Service
			if err := json.Unmarshal(data, &services); err == nil {
				return services, nil
			}
		} else {
			metrics.CacheMisses.WithLabelValues("services_near").Inc()
		}
	}

	candidates, err := s.services.FindNearby(ctx, lat, lng, radiusMeters, category, 0)
	if err != nil {
		return nil, err
	}

	ranked := geospatial.RankByProximity(center, candidates, func(sv domain.Service) domain.GeoPoint {
		return sv.Location
	}, radiusMeters, limit)

	services := make([]domain.Service, len(ranked))
	for i, r := range ranked {
		sv := r.Item
		d := r.DistanceMeters
		sv.Distance = &d
		services[i] = sv
	}

	if s.cache != nil {
		if data, err := json.Marshal(services); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}
	return services, nil
}

// GetByID returns a single service.
func (s *ServiceService) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	cacheKey := "services:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var svc domain.Service
			if err := json.Unmarshal(data, &svc); err == nil {
				return &svc, nil
			}
		}
	}

	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(svc); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 10*time.Minute)
		}
	}
	return svc, nil
}

// OfflineBundle builds a read-only snapshot of services around a point for
// clients that expect to lose connectivity. No category filter: the bundle
// is the client's whole safety net while offline.
func (s *ServiceService) OfflineBundle(ctx context.Context, lat, lng, radiusMeters float64) (*domain.OfflineBundle, error) {
	center := domain.GeoPoint{Lat: lat, Lng: lng}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = 10000
	}
	if radiusMeters > 20000 {
		radiusMeters = 20000
	}

	candidates, err := s.services.FindNearby(ctx, lat, lng, radiusMeters, "", 0)
	if err != nil {
		return nil, err
	}

	ranked := geospatial.RankByProximity(center, candidates, func(sv domain.Service) domain.GeoPoint {
		return sv.Location
	}, radiusMeters, 0)

	services := make([]domain.Service, len(ranked))
	for i, r := range ranked {
		sv := r.Item
		d := r.DistanceMeters
		sv.Distance = &d
		services[i] = sv
	}

	return &domain.OfflineBundle{
		GeneratedAt:  time.Now().UTC(),
		Center:       center,
		RadiusMeters: radiusMeters,
		Services:     services,
		Version:      offlineBundleVersion,
	}, nil
}
