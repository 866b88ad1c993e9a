package geospatial_test

import (
	"testing"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
)

type place struct {
	name string
	loc  domain.GeoPoint
}

func placeLoc(p place) domain.GeoPoint { return p.loc }

func TestRankByProximity_NearestFirst(t *testing.T) {
	center := domain.GeoPoint{Lat: 0, Lng: 0}
	places := []place{
		{name: "far", loc: domain.GeoPoint{Lat: 0.02, Lng: 0}},
		{name: "near", loc: domain.GeoPoint{Lat: 0.005, Lng: 0}},
		{name: "mid", loc: domain.GeoPoint{Lat: 0.01, Lng: 0}},
	}

	ranked := geospatial.RankByProximity(center, places, placeLoc, 10000, 0)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}
	want := []string{"near", "mid", "far"}
	for i, w := range want {
		if ranked[i].Item.name != w {
			t.Errorf("position %d: expected %s, got %s", i, w, ranked[i].Item.name)
		}
	}
	if ranked[0].DistanceMeters >= ranked[1].DistanceMeters {
		t.Error("distances not ascending")
	}
}

func TestRankByProximity_RadiusFilters(t *testing.T) {
	center := domain.GeoPoint{Lat: 0, Lng: 0}
	places := []place{
		{name: "in", loc: domain.GeoPoint{Lat: 0.001, Lng: 0}}, // ~111m
		{name: "out", loc: domain.GeoPoint{Lat: 0.05, Lng: 0}}, // ~5.5km
	}

	ranked := geospatial.RankByProximity(center, places, placeLoc, 500, 0)
	if len(ranked) != 1 || ranked[0].Item.name != "in" {
		t.Fatalf("expected only the in-radius place, got %+v", ranked)
	}
}

func TestRankByProximity_LimitTruncates(t *testing.T) {
	center := domain.GeoPoint{Lat: 0, Lng: 0}
	var places []place
	for i := 0; i < 10; i++ {
		places = append(places, place{loc: domain.GeoPoint{Lat: float64(i) * 0.001, Lng: 0}})
	}

	ranked := geospatial.RankByProximity(center, places, placeLoc, 100000, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}
}

func TestRankByProximity_StableOnTies(t *testing.T) {
	center := domain.GeoPoint{Lat: 0, Lng: 0}
	// Same location, so identical distance: input order must survive.
	loc := domain.GeoPoint{Lat: 0.001, Lng: 0}
	places := []place{
		{name: "first", loc: loc},
		{name: "second", loc: loc},
		{name: "third", loc: loc},
	}

	ranked := geospatial.RankByProximity(center, places, placeLoc, 1000, 0)
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if ranked[i].Item.name != w {
			t.Errorf("tie order broken at %d: expected %s, got %s", i, w, ranked[i].Item.name)
		}
	}
}

func TestRankByProximity_EmptyInput(t *testing.T) {
	ranked := geospatial.RankByProximity(domain.GeoPoint{}, nil, placeLoc, 1000, 0)
	if len(ranked) != 0 {
		t.Errorf("expected empty result, got %d", len(ranked))
	}
}
