package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or
// longitudes outside [-180, 180].
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrInvalidGeometry is returned for polygons that are not closed rings of at
// least four vertices.
var ErrInvalidGeometry = errors.New("invalid geometry")

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinate is within WGS 84 bounds.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: lat %v out of range", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lng %v out of range", ErrInvalidCoordinate, p.Lng)
	}
	return nil
}

// Polygon is a simple planar region: a single closed ring of coordinates
// where the first and last vertex are equal. Winding order is irrelevant;
// containment uses the even-odd rule.
type Polygon struct {
	Ring []GeoPoint `json:"ring"`
}

// Validate checks ring closure and minimum size. A valid ring has at least
// four vertices (a triangle plus the closing vertex).
func (g Polygon) Validate() error {
	if len(g.Ring) < 4 {
		return fmt.Errorf("%w: ring has %d vertices, need at least 4", ErrInvalidGeometry, len(g.Ring))
	}
	if g.Ring[0] != g.Ring[len(g.Ring)-1] {
		return fmt.Errorf("%w: ring is not closed", ErrInvalidGeometry)
	}
	for _, v := range g.Ring {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}
