package geospatial_test

import (
	"math"
	"testing"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
)

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	a := domain.GeoPoint{Lat: 0, Lng: 0}
	b := domain.GeoPoint{Lat: 1, Lng: 0}

	d := geospatial.Haversine(a, b)
	if math.Abs(d-111195) > 100 {
		t.Errorf("expected ~111195m, got %.0fm", d)
	}
}

func TestHaversine_KnownCityDistance(t *testing.T) {
	// SF Ferry Building to SF City Hall, roughly 2.9 km.
	ferry := domain.GeoPoint{Lat: 37.7955, Lng: -122.3937}
	cityHall := domain.GeoPoint{Lat: 37.7793, Lng: -122.4193}

	d := geospatial.Haversine(ferry, cityHall)
	if d < 2700 || d > 3100 {
		t.Errorf("expected ~2900m, got %.0fm", d)
	}
}

func TestHaversine_ZeroForIdenticalPoints(t *testing.T) {
	p := domain.GeoPoint{Lat: 37.7749, Lng: -122.4194}
	if d := geospatial.Haversine(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := domain.GeoPoint{Lat: 37.7749, Lng: -122.4194}
	b := domain.GeoPoint{Lat: 37.8044, Lng: -122.2712}

	if d1, d2 := geospatial.Haversine(a, b), geospatial.Haversine(b, a); d1 != d2 {
		t.Errorf("asymmetric: %f vs %f", d1, d2)
	}
}

func TestWithinRadius_BoundaryInclusive(t *testing.T) {
	a := domain.GeoPoint{Lat: 0, Lng: 0}
	b := domain.GeoPoint{Lat: 1, Lng: 0}
	d := geospatial.Haversine(a, b)

	if !geospatial.WithinRadius(a, b, d) {
		t.Error("point exactly at the radius should be within")
	}
	if geospatial.WithinRadius(a, b, d-1) {
		t.Error("point past the radius should not be within")
	}
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	center := domain.GeoPoint{Lat: 37.7749, Lng: -122.4194}
	b := geospatial.BoundingBox(center, 1000)

	if center.Lat <= b.MinLat || center.Lat >= b.MaxLat {
		t.Errorf("center lat outside box: %+v", b)
	}
	if center.Lng <= b.MinLng || center.Lng >= b.MaxLng {
		t.Errorf("center lng outside box: %+v", b)
	}
	// 1000m is ~0.009 degrees of latitude
	if got := b.MaxLat - b.MinLat; math.Abs(got-0.01797) > 0.001 {
		t.Errorf("unexpected lat span %f", got)
	}
}
