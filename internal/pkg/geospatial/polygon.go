package geospatial

import (
	"github.com/sfhaven/haven/internal/core/domain"
)

// PointInPolygon reports whether p lies inside the polygon's ring using
// even-odd ray casting over (lng, lat) treated as planar (x, y). City-scale
// planar error is acceptable here; distances still use great circles.
//
// Edge policy: boundary points take whatever the crossing count yields. With
// the half-open vertex test below that means a point on the "lower" edge of
// a ring counts as inside and a point on the "upper" edge as outside, so
// adjacent zones sharing an edge never both claim the point. The polygon
// must be a closed ring of at least four vertices; otherwise
// domain.ErrInvalidGeometry is returned.
func PointInPolygon(p domain.GeoPoint, poly domain.Polygon) (bool, error) {
	if err := poly.Validate(); err != nil {
		return false, err
	}
	if err := p.Validate(); err != nil {
		return false, err
	}

	// The closing vertex duplicates the first; walk the open ring.
	ring := poly.Ring[:len(poly.Ring)-1]
	x, y := p.Lng, p.Lat

	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat

		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside, nil
}
