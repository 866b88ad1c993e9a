// Package legality resolves whether parking at a point is allowed at a given
// instant. It is pure computation over snapshots the caller has already
// fetched: no I/O, no shared state, safe to call concurrently.
package legality

import (
	"time"

	"github.com/sfhaven/haven/internal/core/domain"
)

// clockWindowActive reports whether t falls inside the daily window
// [Start, End). Windows whose End is at or before their Start wrap past
// midnight: 22:00-06:00 is active at 23:00 and at 05:59, not at 06:00.
func clockWindowActive(w domain.ClockWindow, t domain.TimeOfDay) bool {
	if w.Start == w.End {
		// Degenerate full-day window.
		return true
	}
	if w.End < w.Start {
		return t >= w.Start || t < w.End
	}
	return t >= w.Start && t < w.End
}

// weeklyWindowActive reports whether t falls inside a day-scoped window such
// as street cleaning. Half-open: exactly End is not active.
func weeklyWindowActive(w domain.WeeklyWindow, at time.Time) bool {
	if at.Weekday() != w.Day {
		return false
	}
	t := domain.At(at)
	return t >= w.Start && t < w.End
}

// RestrictionActive reports whether the zone's temporal rule applies at the
// given instant. at must already be in the city's local civil time, since
// posted restrictions are written in local time.
//
// Rules compose per zone: a street-cleaning schedule and prohibited hours are
// each checked when present; either one being live makes the restriction
// active. A zone with no temporal rule restricts unconditionally.
func RestrictionActive(z domain.ParkingZone, at time.Time) bool {
	hasRule := false

	if z.StreetCleaning != nil {
		hasRule = true
		if weeklyWindowActive(*z.StreetCleaning, at) {
			return true
		}
	}
	if z.Restrictions.ProhibitedHours != nil {
		hasRule = true
		if clockWindowActive(*z.Restrictions.ProhibitedHours, domain.At(at)) {
			return true
		}
	}

	return !hasRule
}
