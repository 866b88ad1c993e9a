package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/core/ports"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
)

// ErrInvalidResourceType is returned for an unrecognized emergency resource type.
var ErrInvalidResourceType = errors.New("invalid emergency resource type")

// emergencySearchRadiusMeters is wide on purpose: when someone needs a
// crisis line or shelter intake, "nothing nearby" is the worst answer.
const emergencySearchRadiusMeters = 50000

// EmergencyService finds the nearest emergency resources.
type EmergencyService struct {
	resources ports.EmergencyResourceRepository
}

// NewEmergencyService creates a new EmergencyService.
func NewEmergencyService(resources ports.EmergencyResourceRepository) *EmergencyService {
	return &EmergencyService{resources: resources}
}

// Nearest returns the closest emergency resources of the given type
// ("shelter", "medical", "crisis", or "all"), nearest first.
func (s *EmergencyService) Nearest(ctx context.Context, lat, lng float64, resourceType string, limit int) ([]domain.EmergencyResource, error) {
	center := domain.GeoPoint{Lat: lat, Lng: lng}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	switch resourceType {
	case "", "all":
		resourceType = ""
	case "shelter", "medical", "crisis":
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidResourceType, resourceType)
	}
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	candidates, err := s.resources.FindNearest(ctx, lat, lng, resourceType, 0)
	if err != nil {
		return nil, err
	}

	ranked := geospatial.RankByProximity(center, candidates, func(r domain.EmergencyResource) domain.GeoPoint {
		return r.Location
	}, emergencySearchRadiusMeters, limit)

	out := make([]domain.EmergencyResource, len(ranked))
	for i, r := range ranked {
		res := r.Item
		d := r.DistanceMeters
		res.Distance = &d
		out[i] = res
	}
	return out, nil
}
