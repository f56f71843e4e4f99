// Package powerflow provides the flow-solver boundary: a topology with
// assigned capacities and loads goes in, per-line apparent power comes out,
// or the solve fails with ErrNotConverged. The rating pipeline never looks
// inside a solver.
package powerflow

import "errors"

// ErrNotConverged is returned when a solver cannot produce a flow solution
// for the given topology, e.g. when an outage islands part of the network.
// Sweep engines treat it as locally recoverable; everything else is fatal.
var ErrNotConverged = errors.New("power flow did not converge")
