package domain

import "math"

// Total solar and sky radiated heat flux (W/ft²) as a polynomial in solar
// altitude (degrees), per IEEE 738 Table 3, English units.
var (
	solarFluxClear = [7]float64{
		-3.9241, 5.9276, -1.7856e-1, 3.223e-3, -3.3549e-5, 1.8053e-7, -3.7868e-10,
	}
	solarFluxIndustrial = [7]float64{
		4.9408, 1.3202, 6.1444e-2, -2.9411e-3, 5.07752e-5, -4.03627e-7, 1.22967e-9,
	}
)

// solarGain computes qs in W/ft: absorbed flux over the conductor's
// projected area (diameter inches / 12 gives ft²/ft), scaled by the sine of
// the effective angle between sun rays and the conductor axis. Zero when
// the sun is below the horizon.
func solarGain(dIn float64, cond Resolved, orient Orientation) float64 {
	altDeg, azDeg := solarPosition(cond.LatitudeDeg, cond.DayOfYear, cond.HourOfDay)
	if altDeg <= 0 {
		return 0
	}

	coeff := solarFluxClear
	if cond.Atmosphere == AtmosphereIndustrial {
		coeff = solarFluxIndustrial
	}
	flux := math.Max(polyval(coeff, altDeg), 0)
	flux *= elevationCorrection(cond.ElevationFt)

	// Effective incidence between sun rays and conductor axis. Line azimuth
	// is 90° for an east-west run, 0° for north-south.
	lineAz := 0.0
	if orient == EastWest {
		lineAz = 90.0
	}
	alt := altDeg * math.Pi / 180
	theta := math.Acos(math.Cos(alt) * math.Cos((azDeg-lineAz)*math.Pi/180))

	return cond.Absorptivity * flux * math.Sin(theta) * dIn / 12
}

// solarPosition returns the solar altitude and azimuth in degrees for the
// given latitude, day of year, and local solar hour.
func solarPosition(latDeg float64, day int, hour float64) (altDeg, azDeg float64) {
	lat := latDeg * math.Pi / 180
	decl := 23.4583 * math.Sin(2*math.Pi*float64(284+day)/365) * math.Pi / 180
	omega := 15 * (hour - 12) * math.Pi / 180

	sinAlt := math.Cos(lat)*math.Cos(decl)*math.Cos(omega) + math.Sin(lat)*math.Sin(decl)
	altDeg = math.Asin(sinAlt) * 180 / math.Pi

	// Azimuth from the solar hour angle, with the quadrant constant chosen
	// by the sign of the hour angle and of the chi denominator (IEEE 738
	// Table 2).
	den := math.Sin(lat)*math.Cos(omega) - math.Cos(lat)*math.Tan(decl)
	var chi float64
	if den != 0 {
		chi = math.Sin(omega) / den
	}
	var c float64
	if omega < 0 {
		if den < 0 {
			c = 180
		}
	} else {
		if den >= 0 {
			c = 180
		} else {
			c = 360
		}
	}
	azDeg = c + math.Atan(chi)*180/math.Pi
	return altDeg, azDeg
}

// elevationCorrection scales the solar flux for altitude above sea level
// (thinner atmosphere passes more flux). Elevation in feet.
func elevationCorrection(elevFt float64) float64 {
	return 1 + 3.500e-5*elevFt - 1.000e-9*elevFt*elevFt
}

func polyval(coeff [7]float64, x float64) float64 {
	sum, xn := 0.0, 1.0
	for _, c := range coeff {
		sum += c * xn
		xn *= x
	}
	return sum
}
