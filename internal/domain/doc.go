// Package domain models overhead transmission line thermal ratings and
// line stress classification.
//
// # Thermal Rating Model
//
// Ratings follow the IEEE Std 738 steady-state heat balance in English
// units. A conductor held at its maximum operating temperature (MOT) is in
// equilibrium when heat lost equals heat gained:
//
//	qc + qr = qs + I²·R(Tc)
//
// so the steady-state ampacity is closed-form:
//
//	I = sqrt(max(0, qc + qr − qs) / R(Tc))
//
// where qc is convective heat loss, qr radiative heat loss, and qs solar
// heat gain, all in watts per foot of conductor. When solar gain alone
// exceeds the losses at the target temperature, the rating is zero by
// definition: the conductor cannot carry any additional current under
// those conditions. That is a physical outcome, not an error.
//
// # Units
//
// The model works in the English-unit formulation of the standard:
//
//	conductor diameter   inches
//	resistance           ohms per foot
//	wind speed           feet per second
//	elevation            feet above sea level
//	temperatures         degrees Celsius
//	heat terms           watts per foot
//
// Conductor reference tables publish resistance in ohms per mile; the CSV
// loader divides by 5280 before constructing a ConductorSpec.
//
// # Atmospheric configuration
//
// Conditions is a partially-specified configuration: every field is a
// pointer, a nil field is "not set". Callers hold a baseline Conditions and
// Merge per-scenario overrides on top of it (last write wins, field by
// field). Resolve checks completeness once, returning a value-typed
// Resolved or a ConfigurationError naming every unresolved field. A rating
// can only be computed from a Resolved.
//
// # Line orientation
//
// The solar term needs the angle between sun rays and the conductor axis,
// which depends on whether the line runs predominantly east-west or
// north-south. Orientation is derived from the terminal bus coordinates:
// the larger absolute coordinate delta wins, with ties going to east-west.
//
// # Stress classification
//
// For each line the pipeline compares apparent load against two capacities:
// the static rated capacity from the conductor ratings table, and the
// dynamic weather-adjusted capacity from the thermal model. A line is
// "at risk" when its dynamic capacity exceeds its nameplate rating, and
// "overcapacity" when load exceeds the nameplate rating. Load percentage
// bands: below 60% nominal, 60 to 90% caution, 90 to 100% critical, and
// 100% and above overloaded.
package domain
