package geospatial

import (
	"sort"

	"github.com/sfhaven/haven/internal/core/domain"
)

// Ranked pairs an item with its computed distance from a query point.
type Ranked[T any] struct {
	Item           T
	DistanceMeters float64
}

// RankByProximity filters items to those within radiusMeters of center and
// returns them ordered nearest-first, truncated to limit (limit <= 0 means
// unlimited). The sort is stable: items at equal distance keep their input
// order, so results are deterministic for deterministic input.
func RankByProximity[T any](center domain.GeoPoint, items []T, locOf func(T) domain.GeoPoint, radiusMeters float64, limit int) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, it := range items {
		d := Haversine(center, locOf(it))
		if d <= radiusMeters {
			ranked = append(ranked, Ranked[T]{Item: it, DistanceMeters: d})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceMeters < ranked[j].DistanceMeters
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
