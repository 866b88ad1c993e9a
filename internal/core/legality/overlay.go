package legality

import (
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
	"github.com/sfhaven/haven/internal/pkg/geospatial"
)

// MaxActiveAlerts caps how many alerts a verdict carries so responses stay
// bounded no matter how busy a block gets. The cap bounds only the attached
// list; precedence still considers every live alert within the radius.
const MaxActiveAlerts = 20

// ApplyAlerts layers user-reported alerts onto a zone-derived verdict.
// Alerts already past their expiry or outside radiusMeters of the query
// point are dropped; survivors attach nearest-first, at most MaxActiveAlerts
// of them. Precedence is evaluated over all survivors, attached or not.
//
// Precedence is deliberately asymmetric, biased toward false restriction
// over false safety:
//   - enforcement within the radius forces illegal — observed enforcement
//     outranks static rules;
//   - hazard only annotates, never changes legality;
//   - safe upgrades an unknown verdict to "likely safe" without asserting
//     legality, and never masks an authoritative restriction.
func ApplyAlerts(verdict domain.Verdict, point domain.GeoPoint, at time.Time, alerts []domain.ParkingAlert, radiusMeters float64) domain.Verdict {
	live := make([]domain.ParkingAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Active(at) {
			live = append(live, a)
		}
	}

	ranked := geospatial.RankByProximity(point, live, func(a domain.ParkingAlert) domain.GeoPoint {
		return a.Location
	}, radiusMeters, 0)

	if len(ranked) == 0 {
		return verdict
	}

	n := len(ranked)
	if n > MaxActiveAlerts {
		n = MaxActiveAlerts
	}
	attached := make([]domain.ParkingAlert, n)
	sawEnforcement := false
	sawSafe := false
	for i, r := range ranked {
		if i < n {
			a := r.Item
			d := r.DistanceMeters
			a.Distance = &d
			attached[i] = a
		}

		switch r.Item.AlertType {
		case domain.AlertEnforcement:
			sawEnforcement = true
		case domain.AlertSafe:
			sawSafe = true
		}
	}
	verdict.ActiveAlerts = attached

	if sawEnforcement {
		f := false
		verdict.IsLegal = &f
		verdict.Status = domain.StatusRestricted
	} else if sawSafe && verdict.IsLegal == nil {
		verdict.Status = domain.StatusLikelySafe
	}
	return verdict
}
