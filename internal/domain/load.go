package domain

import (
	"fmt"
	"math"
)

// LoadShape scales load setpoints sinusoidally over the day, peaking toward
// the configured maximum-load hour. The phase offset is the gap between the
// minimum-load and maximum-load hours.
type LoadShape struct {
	minLoadHour float64
	maxLoadHour float64
	variance    float64
}

// NewLoadShape validates the load-time window up front; an inverted window
// is a configuration error raised before any computation proceeds.
func NewLoadShape(minLoadHour, maxLoadHour, variance float64) (LoadShape, error) {
	if minLoadHour >= maxLoadHour {
		return LoadShape{}, &ConfigurationError{
			Reason: fmt.Sprintf("minimum load hour (%g) must precede maximum load hour (%g)", minLoadHour, maxLoadHour),
		}
	}
	return LoadShape{minLoadHour: minLoadHour, maxLoadHour: maxLoadHour, variance: variance}, nil
}

// Apply shapes one real-power setpoint for the given hour of day. Pure
// per-load transform; topology never enters into it.
func (s LoadShape) Apply(pSetMW, hour float64) float64 {
	offset := s.maxLoadHour - s.minLoadHour
	angle := 2 * math.Pi * (hour - offset) / 24
	return pSetMW * (1 + math.Sin(angle)*s.variance)
}
