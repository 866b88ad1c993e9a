package domain

import (
	"time"
)

// ZoneType classifies a parking zone.
type ZoneType string

const (
	ZoneLegal          ZoneType = "legal"
	ZoneTimeLimited    ZoneType = "time_limited"
	ZoneStreetCleaning ZoneType = "street_cleaning"
	ZoneProhibited     ZoneType = "prohibited"
	ZonePermitOnly     ZoneType = "permit_only"
)

// Severity ranks zone types from most to least restrictive. When overlapping
// zones are simultaneously active, the verdict is taken from the highest
// severity. Zero means unranked.
func (z ZoneType) Severity() int {
	switch z {
	case ZoneProhibited:
		return 5
	case ZoneStreetCleaning:
		return 4
	case ZoneTimeLimited:
		return 3
	case ZonePermitOnly:
		return 2
	case ZoneLegal:
		return 1
	}
	return 0
}

// Restrictive reports whether the zone type encodes a restriction rather than
// baseline permission.
func (z ZoneType) Restrictive() bool {
	return z != ZoneLegal && z != ""
}

// Restrictions is the structured rule payload attached to a zone. Fields the
// engine does not understand arrive in Extra and are preserved untouched for
// display.
type Restrictions struct {
	MaxDays         *int           `json:"max_days,omitempty"`
	VehicleType     string         `json:"vehicle_type,omitempty"`
	ProhibitedHours *ClockWindow   `json:"prohibited_hours,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// ParkingZone is a persistent, polygon-bounded parking restriction record.
//
// A zone is "in force" at instant T iff its effective date (when set) is on or
// before T's date and its expiry date (when set) is on or after it. When both
// are set, EffectiveDate <= ExpiryDate.
type ParkingZone struct {
	ID               int64         `json:"id"`
	ZoneType         ZoneType      `json:"zone_type"`
	Geometry         Polygon       `json:"geometry"`
	Restrictions     Restrictions  `json:"restrictions"`
	TimeLimitMinutes *int          `json:"time_limit_minutes,omitempty"`
	StreetCleaning   *WeeklyWindow `json:"street_cleaning,omitempty"`
	EffectiveDate    *time.Time    `json:"effective_date,omitempty"`
	ExpiryDate       *time.Time    `json:"expiry_date,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// InForce reports whether the zone's effective/expiry window includes the
// date of at. Comparison is by calendar date in at's location.
func (z ParkingZone) InForce(at time.Time) bool {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	if z.EffectiveDate != nil {
		eff := *z.EffectiveDate
		effDay := time.Date(eff.Year(), eff.Month(), eff.Day(), 0, 0, 0, 0, at.Location())
		if effDay.After(day) {
			return false
		}
	}
	if z.ExpiryDate != nil {
		exp := *z.ExpiryDate
		expDay := time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, at.Location())
		if expDay.Before(day) {
			return false
		}
	}
	return true
}

// AlertType classifies a user-submitted parking alert.
type AlertType string

const (
	AlertEnforcement AlertType = "enforcement"
	AlertHazard      AlertType = "hazard"
	AlertSafe        AlertType = "safe"
)

// Valid reports whether the alert type is one of the known values.
func (t AlertType) Valid() bool {
	return t == AlertEnforcement || t == AlertHazard || t == AlertSafe
}

// DefaultTTL is the report lifetime applied when an alert is created.
// Enforcement sightings go stale fast; hazards and safe-spot confirmations
// last a full day.
func (t AlertType) DefaultTTL() time.Duration {
	if t == AlertEnforcement {
		return 2 * time.Hour
	}
	return 24 * time.Hour
}

// ParkingAlert is a short-lived, user-submitted point report layered on top
// of static zones. Alerts are never mutated after creation; once ExpiresAt
// has passed they are excluded from every query. Row deletion is a separate
// housekeeping concern.
type ParkingAlert struct {
	ID          string    `json:"id"`
	Location    GeoPoint  `json:"location"`
	AlertType   AlertType `json:"alert_type"`
	Description string    `json:"description,omitempty"`
	ReportedBy  string    `json:"reported_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Distance    *float64  `json:"distance_meters,omitempty"` // computed field
}

// Active reports whether the alert is still live at the given instant.
func (a ParkingAlert) Active(at time.Time) bool {
	return a.ExpiresAt.After(at)
}

// Verdict statuses. LikelySafe is reserved for an unknown verdict upgraded by
// a nearby "safe" report; it never asserts legality outright.
const (
	StatusSafe       = "safe"
	StatusRestricted = "restricted"
	StatusUnknown    = "unknown"
	StatusLikelySafe = "likely_safe"
)

// Verdict is the resolved parking-legality answer for a point-in-time query.
// It is derived, never persisted: identical inputs always produce an
// identical verdict. IsLegal is nil when no zone information covers the
// point ("no data" is a normal result, not an error).
type Verdict struct {
	IsLegal          *bool          `json:"is_legal"`
	Status           string         `json:"status"`
	ZoneID           *int64         `json:"zone_id,omitempty"`
	ZoneType         ZoneType       `json:"zone_type,omitempty"`
	Restrictions     *Restrictions  `json:"restrictions,omitempty"`
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	ActiveAlerts     []ParkingAlert `json:"active_alerts,omitempty"`
	EvaluatedAt      time.Time      `json:"evaluated_at"`
}

// Service is a point of interest offering help: shelter beds, meals, showers,
// medical care. The legality engine only needs ID and Location; the rest is
// carried for the API.
type Service struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Category             string         `json:"category"`
	Subcategory          string         `json:"subcategory,omitempty"`
	Description          string         `json:"description,omitempty"`
	Address              string         `json:"address,omitempty"`
	Location             GeoPoint       `json:"location"`
	Phone                string         `json:"phone,omitempty"`
	Website              string         `json:"website,omitempty"`
	Hours                map[string]any `json:"hours,omitempty"`
	Requirements         string         `json:"requirements,omitempty"`
	Capacity             *int           `json:"capacity,omitempty"`
	CurrentAvailability  *int           `json:"current_availability,omitempty"`
	Amenities            []string       `json:"amenities,omitempty"`
	Languages            []string       `json:"languages,omitempty"`
	AccessibilityFeature []string       `json:"accessibility_features,omitempty"`
	IsActive             bool           `json:"is_active"`
	Distance             *float64       `json:"distance_meters,omitempty"` // computed field
	LastUpdated          time.Time      `json:"last_updated"`
}

// EmergencyResource is a hotline-backed resource (shelter intake, crisis
// line, urgent medical) surfaced by the nearest-resource lookup.
type EmergencyResource struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"` // shelter | medical | crisis
	Phone         string   `json:"phone"`
	Address       string   `json:"address,omitempty"`
	Location      GeoPoint `json:"location"`
	Available24x7 bool     `json:"available_24_7"`
	Description   string   `json:"description,omitempty"`
	Distance      *float64 `json:"distance_meters,omitempty"` // computed field
}

// OfflineBundle is a read-only snapshot of nearby services handed to clients
// that expect to lose connectivity.
type OfflineBundle struct {
	GeneratedAt  time.Time `json:"generated_at"`
	Center       GeoPoint  `json:"center"`
	RadiusMeters float64   `json:"radius_meters"`
	Services     []Service `json:"services"`
	Version      string    `json:"version"`
}
