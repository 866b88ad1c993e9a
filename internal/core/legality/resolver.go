package legality

import (
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
)

// Resolve computes the legality verdict for a point at an instant from a
// snapshot of candidate zones. The candidate set may over-approximate (the
// persistence layer returns anything plausibly intersecting the search
// radius); containment is re-checked here precisely.
//
// at must be in the city's local civil time. Malformed geometry in a
// candidate zone aborts the whole resolution rather than silently skipping
// the zone: a zone we cannot test could be the one that prohibits parking.
func Resolve(point domain.GeoPoint, at time.Time, zones []domain.ParkingZone) (domain.Verdict, error) {
	verdict := domain.Verdict{
		Status:      domain.StatusUnknown,
		EvaluatedAt: at,
	}
	if err := point.Validate(); err != nil {
		return verdict, err
	}

	var winner *domain.ParkingZone
	sawLegal := false

	for i := range zones {
		z := zones[i]
		if !z.InForce(at) {
			continue
		}
		inside, err := geospatial.PointInPolygon(point, z.Geometry)
		if err != nil {
			return verdict, err
		}
		if !inside {
			continue
		}

		if !z.ZoneType.Restrictive() {
			// A baseline legal zone contributes permissiveness whether or not
			// any temporal rule is live.
			sawLegal = true
			continue
		}
		if !RestrictionActive(z, at) {
			continue
		}

		if winner == nil || moreRestrictive(z, *winner) {
			zz := z
			winner = &zz
		}
	}

	switch {
	case winner != nil:
		f := false
		verdict.IsLegal = &f
		verdict.Status = domain.StatusRestricted
		verdict.ZoneID = &winner.ID
		verdict.ZoneType = winner.ZoneType
		r := winner.Restrictions
		verdict.Restrictions = &r
		verdict.TimeLimitMinutes = winner.TimeLimitMinutes
	case sawLegal:
		tr := true
		verdict.IsLegal = &tr
		verdict.Status = domain.StatusSafe
		verdict.ZoneType = domain.ZoneLegal
	}
	return verdict, nil
}

// moreRestrictive is the total order used to pick the governing zone among
// simultaneously active restrictions: severity first, then the tighter time
// limit (an unset limit is no bound at all), then lowest ID so ties resolve
// deterministically.
func moreRestrictive(a, b domain.ParkingZone) bool {
	as, bs := a.ZoneType.Severity(), b.ZoneType.Severity()
	if as != bs {
		return as > bs
	}
	al, bl := timeLimitOrUnbounded(a), timeLimitOrUnbounded(b)
	if al != bl {
		return al < bl
	}
	return a.ID < b.ID
}

func timeLimitOrUnbounded(z domain.ParkingZone) int {
	if z.TimeLimitMinutes == nil {
		return int(^uint(0) >> 1) // no numeric bound
	}
	return *z.TimeLimitMinutes
}
