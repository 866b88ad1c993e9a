package geospatial

import (
	"math"

	"github.com/sfhaven/haven/internal/core/domain"
)

const earthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two
// points. Symmetric, and zero for identical points.
func Haversine(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// WithinRadius reports whether p lies within radiusMeters of center,
// boundary inclusive.
func WithinRadius(center, p domain.GeoPoint, radiusMeters float64) bool {
	return Haversine(center, p) <= radiusMeters
}

// BoundingBox returns a bounding box around a point with the given radius in
// meters. Used only as a coarse prefilter; precise checks go through
// Haversine or PointInPolygon.
func BoundingBox(center domain.GeoPoint, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / 111320.0
	lngDelta := radiusMeters / (111320.0 * math.Cos(toRad(center.Lat)))

	return domain.Bounds{
		MinLat: center.Lat - latDelta,
		MinLng: center.Lng - lngDelta,
		MaxLat: center.Lat + latDelta,
		MaxLng: center.Lng + lngDelta,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
