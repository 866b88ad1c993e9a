package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/core/legality"
	"github.com/sfhaven/haven/internal/core/ports"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
	"github.com/sfhaven/haven/internal/pkg/metrics"
)

// ErrInvalidAlertType is returned for an unrecognized alert type.
var ErrInvalidAlertType = errors.New("invalid alert type")

const (
	// zoneProbeRadiusMeters is the fetch radius for containment candidates.
	// The repository over-returns anything plausibly intersecting it; the
	// resolver re-checks containment precisely.
	zoneProbeRadiusMeters = 50

	defaultZoneRadiusMeters  = 1000
	defaultAlertRadiusMeters = 2000
	maxAlertRadiusMeters     = 5000
	minZoneRadiusMeters      = 100
	maxZoneRadiusMeters      = 10000

	// alertFetchLimit bounds how many candidate alerts a legality check pulls
	// before the overlay trims to legality.MaxActiveAlerts.
	alertFetchLimit = 100
)

// ParkingService answers parking legality queries and records alert reports.
type ParkingService struct {
	zones     ports.ZoneRepository
	alerts    ports.AlertRepository
	cache     ports.CacheService
	publisher ports.EventPublisher

	// loc is the city's civil timezone; posted restrictions are written in
	// local time, so every rule evaluation converts into it first.
	loc *time.Location

	// overlayRadius scopes which alerts influence a legality verdict.
	overlayRadius float64

	now func() time.Time
}

// NewParkingService creates a new ParkingService. overlayRadiusMeters <= 0
// selects a 500 m default.
func NewParkingService(zones ports.ZoneRepository, alerts ports.AlertRepository, cache ports.CacheService, publisher ports.EventPublisher, loc *time.Location, overlayRadiusMeters float64) *ParkingService {
	if loc == nil {
		loc = time.UTC
	}
	if overlayRadiusMeters <= 0 {
		overlayRadiusMeters = 500
	}
	return &ParkingService{
		zones:         zones,
		alerts:        alerts,
		cache:         cache,
		publisher:     publisher,
		loc:           loc,
		overlayRadius: overlayRadiusMeters,
		now:           time.Now,
	}
}

// CheckLegality resolves whether parking at (lat, lng) is allowed. at == nil
// means "now". The verdict is recomputed on every call; only the underlying
// zone/alert snapshots may come from cache.
func (s *ParkingService) CheckLegality(ctx context.Context, lat, lng float64, at *time.Time) (*domain.Verdict, error) {
	point := domain.GeoPoint{Lat: lat, Lng: lng}
	if err := point.Validate(); err != nil {
		return nil, err
	}

	t := s.now()
	if at != nil {
		t = *at
	}
	t = t.In(s.loc)

	zones, err := s.zones.FindNear(ctx, lat, lng, zoneProbeRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("fetch zones: %w", err)
	}

	verdict, err := legality.Resolve(point, t, zones)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts.FindNear(ctx, lat, lng, s.overlayRadius, t, alertFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	verdict = legality.ApplyAlerts(verdict, point, t, alerts, s.overlayRadius)

	metrics.LegalityChecks.WithLabelValues(verdict.Status).Inc()
	return &verdict, nil
}

// ZonesNear returns parking zones around a point for map display. Results
// are in-force zones only and may be served from cache for a few minutes.
func (s *ParkingService) ZonesNear(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.ParkingZone, error) {
	if err := (domain.GeoPoint{Lat: lat, Lng: lng}).Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultZoneRadiusMeters
	}
	if radiusMeters < minZoneRadiusMeters {
		radiusMeters = minZoneRadiusMeters
	}
	if radiusMeters > maxZoneRadiusMeters {
		radiusMeters = maxZoneRadiusMeters
	}

	cacheKey := fmt.Sprintf("zones:near:%.4f:%.4f:%.0f", lat, lng, radiusMeters)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			metrics.CacheHits.WithLabelValues("zones_near").Inc()
			var zones []domain.ParkingZone
			if err := json.Unmarshal(data, &zones); err == nil {
				return zones, nil
			}
		} else {
			metrics.CacheMisses.WithLabelValues("zones_near").Inc()
		}
	}

	zones, err := s.zones.FindNear(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}

	at := s.now().In(s.loc)
	inForce := make([]domain.ParkingZone, 0, len(zones))
	for _, z := range zones {
		if z.InForce(at) {
			inForce = append(inForce, z)
		}
	}

	// Zone geometry changes rarely; 5 minutes is safe.
	if s.cache != nil {
		if data, err := json.Marshal(inForce); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}
	return inForce, nil
}

// AlertsNear returns live alerts around a point, nearest first. Expired rows
// the repository over-returns are filtered here.
func (s *ParkingService) AlertsNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.ParkingAlert, error) {
	point := domain.GeoPoint{Lat: lat, Lng: lng}
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultAlertRadiusMeters
	}
	if radiusMeters > maxAlertRadiusMeters {
		radiusMeters = maxAlertRadiusMeters
	}
	if limit <= 0 || limit > legality.MaxActiveAlerts {
		limit = legality.MaxActiveAlerts
	}

	now := s.now().In(s.loc)
	candidates, err := s.alerts.FindNear(ctx, lat, lng, radiusMeters, now, alertFetchLimit)
	if err != nil {
		return nil, err
	}

	live := candidates[:0]
	for _, a := range candidates {
		if a.Active(now) {
			live = append(live, a)
		}
	}

	ranked := geospatial.RankByProximity(point, live, func(a domain.ParkingAlert) domain.GeoPoint {
		return a.Location
	}, radiusMeters, limit)

	out := make([]domain.ParkingAlert, len(ranked))
	for i, r := range ranked {
		a := r.Item
		d := r.DistanceMeters
		a.Distance = &d
		out[i] = a
	}
	return out, nil
}

// ReportAlertInput carries a user-submitted alert report.
type ReportAlertInput struct {
	Location    domain.GeoPoint
	AlertType   domain.AlertType
	Description string
	ReportedBy  string
}

// ReportAlert records an alert with a lifetime fixed by its type: two hours
// for enforcement sightings, a day for hazards and safe-spot confirmations.
// The stored alert is immutable; it simply ages out.
func (s *ParkingService) ReportAlert(ctx context.Context, in ReportAlertInput) (*domain.ParkingAlert, error) {
	if err := in.Location.Validate(); err != nil {
		return nil, err
	}
	if !in.AlertType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlertType, in.AlertType)
	}

	now := s.now().In(s.loc)
	alert := &domain.ParkingAlert{
		Location:    in.Location,
		AlertType:   in.AlertType,
		Description: in.Description,
		ReportedBy:  in.ReportedBy,
		CreatedAt:   now,
		ExpiresAt:   now.Add(in.AlertType.DefaultTTL()),
	}

	if err := s.alerts.Insert(ctx, alert); err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}

	metrics.AlertsReported.WithLabelValues(string(in.AlertType)).Inc()

	// Best-effort fan-out to live map clients.
	if s.publisher != nil {
		_ = s.publisher.PublishAlertReported(ctx, alert)
	}
	return alert, nil
}
