package domain

import (
	"fmt"
	"time"
)

// AtmosphereClass selects the solar heat-flux attenuation curve.
type AtmosphereClass string

const (
	AtmosphereClear      AtmosphereClass = "clear"
	AtmosphereIndustrial AtmosphereClass = "industrial"
)

// Conditions is a partially-specified set of atmospheric parameters. Nil
// fields are unset. Callers keep a baseline Conditions and Merge scenario
// overrides onto it; Resolve validates completeness before any rating is
// computed.
type Conditions struct {
	AmbientTempC *float64         `json:"ambient_temp_c,omitempty"`
	WindSpeedFtS *float64         `json:"wind_speed_ft_s,omitempty"`
	WindAngleDeg *float64         `json:"wind_angle_deg,omitempty"`
	ElevationFt  *float64         `json:"elevation_ft,omitempty"`
	LatitudeDeg  *float64         `json:"latitude_deg,omitempty"`
	Date         *string          `json:"date,omitempty"` // day and month, e.g. "12 Jun"
	HourOfDay    *float64         `json:"hour_of_day,omitempty"`
	Emissivity   *float64         `json:"emissivity,omitempty"`
	Absorptivity *float64         `json:"absorptivity,omitempty"`
	Atmosphere   *AtmosphereClass `json:"atmosphere,omitempty"`
}

// Opt returns a pointer to v, for building Conditions literals.
func Opt[T any](v T) *T { return &v }

// Merge overlays o onto c field by field; set fields in o win.
func (c Conditions) Merge(o Conditions) Conditions {
	out := c
	if o.AmbientTempC != nil {
		out.AmbientTempC = o.AmbientTempC
	}
	if o.WindSpeedFtS != nil {
		out.WindSpeedFtS = o.WindSpeedFtS
	}
	if o.WindAngleDeg != nil {
		out.WindAngleDeg = o.WindAngleDeg
	}
	if o.ElevationFt != nil {
		out.ElevationFt = o.ElevationFt
	}
	if o.LatitudeDeg != nil {
		out.LatitudeDeg = o.LatitudeDeg
	}
	if o.Date != nil {
		out.Date = o.Date
	}
	if o.HourOfDay != nil {
		out.HourOfDay = o.HourOfDay
	}
	if o.Emissivity != nil {
		out.Emissivity = o.Emissivity
	}
	if o.Absorptivity != nil {
		out.Absorptivity = o.Absorptivity
	}
	if o.Atmosphere != nil {
		out.Atmosphere = o.Atmosphere
	}
	return out
}

// Resolved is a fully-specified, value-typed view of Conditions. Only a
// Resolved can feed the thermal model.
type Resolved struct {
	AmbientTempC float64
	WindSpeedFtS float64
	WindAngleDeg float64
	ElevationFt  float64
	LatitudeDeg  float64
	DayOfYear    int
	HourOfDay    float64
	Emissivity   float64
	Absorptivity float64
	Atmosphere   AtmosphereClass
}

// Resolve checks that every field is set and valid. On failure it returns a
// ConfigurationError listing all unresolved fields at once so callers can
// fix their configuration in a single pass.
func (c Conditions) Resolve() (Resolved, error) {
	var missing []string
	need := func(name string, set bool) {
		if !set {
			missing = append(missing, name)
		}
	}
	need("ambient_temp_c", c.AmbientTempC != nil)
	need("wind_speed_ft_s", c.WindSpeedFtS != nil)
	need("wind_angle_deg", c.WindAngleDeg != nil)
	need("elevation_ft", c.ElevationFt != nil)
	need("latitude_deg", c.LatitudeDeg != nil)
	need("date", c.Date != nil)
	need("hour_of_day", c.HourOfDay != nil)
	need("emissivity", c.Emissivity != nil)
	need("absorptivity", c.Absorptivity != nil)
	need("atmosphere", c.Atmosphere != nil)
	if len(missing) > 0 {
		return Resolved{}, &ConfigurationError{Missing: missing}
	}

	day, err := dayOfYear(*c.Date)
	if err != nil {
		return Resolved{}, &ConfigurationError{Reason: err.Error()}
	}
	switch *c.Atmosphere {
	case AtmosphereClear, AtmosphereIndustrial:
	default:
		return Resolved{}, &ConfigurationError{Reason: fmt.Sprintf("atmosphere class must be %q or %q, got %q", AtmosphereClear, AtmosphereIndustrial, *c.Atmosphere)}
	}

	return Resolved{
		AmbientTempC: *c.AmbientTempC,
		WindSpeedFtS: *c.WindSpeedFtS,
		WindAngleDeg: *c.WindAngleDeg,
		ElevationFt:  *c.ElevationFt,
		LatitudeDeg:  *c.LatitudeDeg,
		DayOfYear:    day,
		HourOfDay:    *c.HourOfDay,
		Emissivity:   *c.Emissivity,
		Absorptivity: *c.Absorptivity,
		Atmosphere:   *c.Atmosphere,
	}, nil
}

// dayOfYear parses a "12 Jun" style date into a 1-based day of year. The
// calendar year is pinned to a non-leap year so the same date string always
// yields the same solar declination.
func dayOfYear(s string) (int, error) {
	t, err := time.Parse("2 Jan", s)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", s, err)
	}
	return time.Date(2025, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).YearDay(), nil
}
