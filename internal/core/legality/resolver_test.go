package legality_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/core/legality"
)

// zoneSquare builds a zone covering the 1x1 degree square at the origin.
func zoneSquare(id int64, zt domain.ZoneType) domain.ParkingZone {
	return domain.ParkingZone{
		ID:       id,
		ZoneType: zt,
		Geometry: domain.Polygon{Ring: []domain.GeoPoint{
			{Lat: 0, Lng: 0},
			{Lat: 0, Lng: 1},
			{Lat: 1, Lng: 1},
			{Lat: 1, Lng: 0},
			{Lat: 0, Lng: 0},
		}},
	}
}

var origin = domain.GeoPoint{Lat: 0.5, Lng: 0.5}

func TestResolve_NoZonesIsUnknown(t *testing.T) {
	v, err := legality.Resolve(origin, tuesday(12, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusUnknown {
		t.Errorf("expected unknown, got %s", v.Status)
	}
	if v.IsLegal != nil {
		t.Error("no data should leave IsLegal nil, not false")
	}
}

func TestResolve_LegalZoneIsSafe(t *testing.T) {
	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{
		zoneSquare(1, domain.ZoneLegal),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusSafe {
		t.Errorf("expected safe, got %s", v.Status)
	}
	if v.IsLegal == nil || !*v.IsLegal {
		t.Error("expected IsLegal true")
	}
}

func TestResolve_RestrictiveZoneWins(t *testing.T) {
	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{
		zoneSquare(1, domain.ZoneLegal),
		zoneSquare(2, domain.ZoneProhibited),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusRestricted {
		t.Errorf("expected restricted, got %s", v.Status)
	}
	if v.IsLegal == nil || *v.IsLegal {
		t.Error("expected IsLegal false")
	}
	if v.ZoneID == nil || *v.ZoneID != 2 {
		t.Errorf("expected winning zone 2, got %v", v.ZoneID)
	}
}

func TestResolve_OutsidePolygonIgnored(t *testing.T) {
	outside := domain.GeoPoint{Lat: 5, Lng: 5}
	v, err := legality.Resolve(outside, tuesday(12, 0), []domain.ParkingZone{
		zoneSquare(1, domain.ZoneProhibited),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusUnknown {
		t.Errorf("zone not containing the point must not apply, got %s", v.Status)
	}
}

func TestResolve_ExpiredZoneIgnored(t *testing.T) {
	expired := zoneSquare(1, domain.ZoneProhibited)
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	expired.ExpiryDate = &past

	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{expired})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusUnknown {
		t.Errorf("expired zone must not apply, got %s", v.Status)
	}
}

func TestResolve_InactiveWindowSkipsRestriction(t *testing.T) {
	z := zoneSquare(1, domain.ZoneStreetCleaning)
	z.StreetCleaning = &domain.WeeklyWindow{
		Day:   time.Tuesday,
		Start: tod(8, 0),
		End:   tod(10, 0),
	}

	// Outside the cleaning window the zone contributes nothing.
	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{z})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusUnknown {
		t.Errorf("inactive restriction should leave verdict unknown, got %s", v.Status)
	}

	// Inside the window it restricts.
	v, err = legality.Resolve(origin, tuesday(9, 0), []domain.ParkingZone{z})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != domain.StatusRestricted {
		t.Errorf("active restriction should restrict, got %s", v.Status)
	}
}

func TestResolve_SeverityOrdersOverlaps(t *testing.T) {
	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{
		zoneSquare(1, domain.ZoneTimeLimited),
		zoneSquare(2, domain.ZoneProhibited),
		zoneSquare(3, domain.ZonePermitOnly),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ZoneType != domain.ZoneProhibited {
		t.Errorf("expected prohibited to govern, got %s", v.ZoneType)
	}
}

func TestResolve_TieBreaksOnTighterTimeLimit(t *testing.T) {
	sixty, oneTwenty := 60, 120

	a := zoneSquare(1, domain.ZoneTimeLimited)
	a.TimeLimitMinutes = &oneTwenty
	b := zoneSquare(2, domain.ZoneTimeLimited)
	b.TimeLimitMinutes = &sixty

	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.TimeLimitMinutes == nil || *v.TimeLimitMinutes != 60 {
		t.Errorf("expected the 60-minute zone to govern, got %v", v.TimeLimitMinutes)
	}

	// An unset limit means no bound at all, so any explicit limit is tighter.
	c := zoneSquare(3, domain.ZoneTimeLimited)
	v, err = legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{c, a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ZoneID == nil || *v.ZoneID != 1 {
		t.Errorf("expected the bounded zone to govern, got %v", v.ZoneID)
	}
}

func TestResolve_TieBreaksOnLowestID(t *testing.T) {
	v, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{
		zoneSquare(7, domain.ZoneProhibited),
		zoneSquare(3, domain.ZoneProhibited),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ZoneID == nil || *v.ZoneID != 3 {
		t.Errorf("expected lowest zone ID to win ties, got %v", v.ZoneID)
	}
}

func TestResolve_MalformedGeometryAborts(t *testing.T) {
	bad := domain.ParkingZone{
		ID:       1,
		ZoneType: domain.ZoneProhibited,
		Geometry: domain.Polygon{Ring: []domain.GeoPoint{
			{Lat: 0, Lng: 0},
			{Lat: 1, Lng: 1},
		}},
	}

	_, err := legality.Resolve(origin, tuesday(12, 0), []domain.ParkingZone{bad})
	if !errors.Is(err, domain.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	zones := []domain.ParkingZone{
		zoneSquare(1, domain.ZoneLegal),
		zoneSquare(2, domain.ZoneTimeLimited),
	}
	at := tuesday(12, 0)

	v1, err := legality.Resolve(origin, at, zones)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := legality.Resolve(origin, at, zones)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Errorf("identical inputs produced different verdicts:\n%+v\n%+v", v1, v2)
	}
}
