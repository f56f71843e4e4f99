package domain

import "math"

// Orientation classifies a line's predominant compass run, which selects
// the line azimuth for the solar incidence term.
type Orientation string

const (
	EastWest   Orientation = "east-west"
	NorthSouth Orientation = "north-south"
)

// OrientationBetween classifies a line from its terminal bus coordinates.
// The larger absolute coordinate delta wins; an exact tie is east-west.
func OrientationBetween(x0, y0, x1, y1 float64) Orientation {
	if math.Abs(x0-x1) >= math.Abs(y0-y1) {
		return EastWest
	}
	return NorthSouth
}
