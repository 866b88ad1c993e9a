package domain

import "encoding/json"

// restrictionsKnown mirrors the typed fields of Restrictions for JSON work.
type restrictionsKnown struct {
	MaxDays         *int         `json:"max_days,omitempty"`
	VehicleType     string       `json:"vehicle_type,omitempty"`
	ProhibitedHours *ClockWindow `json:"prohibited_hours,omitempty"`
}

// UnmarshalJSON decodes the typed fields and keeps anything it does not
// recognise in Extra, untouched, so display-only payload survives a round
// trip through the engine.
func (r *Restrictions) UnmarshalJSON(b []byte) error {
	var known restrictionsKnown
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	delete(raw, "max_days")
	delete(raw, "vehicle_type")
	delete(raw, "prohibited_hours")

	*r = Restrictions{
		MaxDays:         known.MaxDays,
		VehicleType:     known.VehicleType,
		ProhibitedHours: known.ProhibitedHours,
	}
	if len(raw) > 0 {
		r.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			r.Extra[k] = val
		}
	}
	return nil
}

// MarshalJSON flattens Extra back alongside the typed fields.
func (r Restrictions) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3+len(r.Extra))
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.MaxDays != nil {
		out["max_days"] = *r.MaxDays
	}
	if r.VehicleType != "" {
		out["vehicle_type"] = r.VehicleType
	}
	if r.ProhibitedHours != nil {
		out["prohibited_hours"] = *r.ProhibitedHours
	}
	return json.Marshal(out)
}
