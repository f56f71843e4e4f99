package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownConductor indicates a conductor name with no library entry.
	ErrUnknownConductor = errors.New("unknown conductor")

	// ErrNoRating indicates the ratings table has no row for a
	// (conductor, MOT) pair, or no column for the requested voltage class.
	ErrNoRating = errors.New("no rating for conductor")

	// ErrResistanceSpan indicates the two resistance reference temperatures
	// are equal, which makes the interpolation slope undefined.
	ErrResistanceSpan = errors.New("resistance reference temperatures are equal")
)

// ConfigurationError reports missing or contradictory configuration. It is
// returned by Conditions.Resolve with every unresolved field, and by
// NewLoadShape when the load-time window is inverted. Configuration errors
// abort the computation they occur in; they are never silently defaulted.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("atmospheric conditions unresolved: missing %s", strings.Join(e.Missing, ", "))
	}
	return e.Reason
}
