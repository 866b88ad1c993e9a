package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a civil clock time expressed as minutes since midnight.
// Parking restrictions are posted in the city's local time, so all rule
// evaluation happens against local civil time, never UTC.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// At extracts the TimeOfDay from a wall-clock instant.
func At(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes from "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ClockWindow is a daily restriction window [Start, End). A window whose End
// is at or before its Start wraps past midnight (22:00-06:00 covers late
// night and early morning).
type ClockWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// WeeklyWindow is a restriction window tied to a single weekday, such as a
// street-cleaning schedule. [Start, End) on Day only.
type WeeklyWindow struct {
	Day   time.Weekday `json:"day_of_week"`
	Start TimeOfDay    `json:"start_time"`
	End   TimeOfDay    `json:"end_time"`
}
