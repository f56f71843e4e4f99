package domain

import "math"

// ThermalRating is the steady-state heat balance result for one
// (conductor, atmosphere, orientation, MOT) tuple. Heat terms are in watts
// per foot. Recomputed for every scenario; never cached, because every term
// depends on the atmospheric inputs.
type ThermalRating struct {
	SolarGainWFt      float64
	ConvectiveLossWFt float64
	RadiativeLossWFt  float64
	Amps              float64
}

// MVA converts the rating current to a three-phase apparent power capacity
// at the given nominal line-to-line voltage in kV.
func (r ThermalRating) MVA(kv float64) float64 {
	return math.Sqrt(3) * r.Amps * kv / 1000
}

// RateConductor solves the IEEE 738 steady-state heat balance for the
// ampacity of a conductor held at operating temperature motC under the
// given resolved atmospheric conditions and line orientation.
//
// If solar gain exceeds the combined convective and radiative losses at the
// target temperature, the rating is zero: the conductor cannot sustain any
// current without exceeding its MOT.
func RateConductor(spec ConductorSpec, cond Resolved, orient Orientation, motC float64) (ThermalRating, error) {
	r, err := spec.ResistanceAt(motC)
	if err != nil {
		return ThermalRating{}, err
	}

	qc := convectiveLoss(spec.DiameterIn, motC, cond)
	qr := radiativeLoss(spec.DiameterIn, motC, cond.AmbientTempC, cond.Emissivity)
	qs := solarGain(spec.DiameterIn, cond, orient)

	rating := ThermalRating{
		SolarGainWFt:      qs,
		ConvectiveLossWFt: qc,
		RadiativeLossWFt:  qr,
	}
	if residual := qc + qr - qs; residual > 0 {
		rating.Amps = math.Sqrt(residual / r)
	}
	return rating, nil
}

// radiativeLoss is the Stefan-Boltzmann term in W/ft for a conductor of
// diameter d inches at tc against ambient ta (°C).
func radiativeLoss(dIn, tc, ta, emissivity float64) float64 {
	return 0.138 * dIn * emissivity *
		(math.Pow((tc+273)/100, 4) - math.Pow((ta+273)/100, 4))
}

// convectiveLoss evaluates both forced-convection correlations and the
// natural (still air) convection term, returning the largest. Convection
// never drops below the still-air value, so natural convection is the
// physical floor even when wind is present.
func convectiveLoss(dIn float64, tc float64, cond Resolved) float64 {
	ta := cond.AmbientTempC
	tFilm := (tc + ta) / 2
	mu := airViscosity(tFilm)
	rho := airDensity(tFilm, cond.ElevationFt)
	k := airConductivity(tFilm)
	dt := tc - ta

	qcn := 0.283 * math.Sqrt(rho) * math.Pow(dIn, 0.75) * math.Pow(math.Max(dt, 0), 1.25)

	vFtH := cond.WindSpeedFtS * 3600
	if vFtH <= 0 {
		return qcn
	}
	re := dIn * rho * vFtH / mu
	ka := windAngleFactor(cond.WindAngleDeg)
	qc1 := (1.01 + 0.371*math.Pow(re, 0.52)) * k * ka * dt
	qc2 := 0.1695 * math.Pow(re, 0.6) * k * ka * dt

	return math.Max(qcn, math.Max(qc1, qc2))
}

// windAngleFactor corrects forced convection for the wind-to-line angle:
// 1.0 at 90° (perpendicular, maximum cooling), ~0.39 at 0° (parallel).
func windAngleFactor(angleDeg float64) float64 {
	phi := angleDeg * math.Pi / 180
	return 1.194 - math.Cos(phi) + 0.194*math.Cos(2*phi) + 0.368*math.Sin(2*phi)
}

// Air properties at film temperature (°C), English units per IEEE 738.

// airViscosity returns dynamic viscosity in lb/(ft·h).
func airViscosity(tFilm float64) float64 {
	return 0.0415 + 1.2034e-4*tFilm - 1.1442e-7*tFilm*tFilm + 1.9416e-10*tFilm*tFilm*tFilm
}

// airDensity returns density in lb/ft³ at the given elevation in feet.
func airDensity(tFilm, elevFt float64) float64 {
	return (0.080695 - 2.901e-6*elevFt + 3.7e-11*elevFt*elevFt) / (1 + 0.00367*tFilm)
}

// airConductivity returns thermal conductivity in W/(ft·°C).
func airConductivity(tFilm float64) float64 {
	return 0.007388 + 2.27889e-5*tFilm - 1.34328e-9*tFilm*tFilm
}
