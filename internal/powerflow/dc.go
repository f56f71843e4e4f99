package powerflow

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/line-rating-service/internal/domain"
)

// BaseMVA is the per-unit system base for branch reactances.
const BaseMVA = 100.0

// DCSolver is a linearized DC power-flow approximation: lossless branches,
// flat voltage profile, angles from B'θ = P with the slack angle fixed at
// zero. Generation is dispatched proportionally to capability so the system
// balances without an optimization step.
//
// A topology whose active branches no longer connect every bus to the slack
// yields a singular susceptance matrix, which surfaces as ErrNotConverged,
// the same signal a full AC solve gives for an islanded contingency.
type DCSolver struct{}

type branch struct {
	from, to int
	suscept  float64 // 1/x in per-unit
	line     string  // empty for transformers
}

// Solve returns apparent power in MVA per active line, keyed by line name.
func (DCSolver) Solve(ctx context.Context, n *domain.Network) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(n.Buses) == 0 {
		return nil, fmt.Errorf("%w: empty network", ErrNotConverged)
	}

	busIdx := make(map[string]int, len(n.Buses))
	for i, b := range n.Buses {
		busIdx[b.Name] = i
	}

	branches, err := activeBranches(n, busIdx)
	if err != nil {
		return nil, err
	}

	inj, slack, err := injections(n, busIdx)
	if err != nil {
		return nil, err
	}

	theta, err := solveAngles(len(n.Buses), slack, branches, inj)
	if err != nil {
		return nil, err
	}

	flows := make(map[string]float64)
	for _, br := range branches {
		if br.line == "" {
			continue
		}
		pu := (theta[br.from] - theta[br.to]) * br.suscept
		flows[br.line] = math.Abs(pu) * BaseMVA
	}
	return flows, nil
}

func activeBranches(n *domain.Network, busIdx map[string]int) ([]branch, error) {
	var out []branch
	add := func(name, from, to string, xPU float64, line string) error {
		fi, ok := busIdx[from]
		if !ok {
			return fmt.Errorf("branch %q: unknown bus %q", name, from)
		}
		ti, ok := busIdx[to]
		if !ok {
			return fmt.Errorf("branch %q: unknown bus %q", name, to)
		}
		if xPU <= 0 {
			return fmt.Errorf("branch %q: reactance must be positive, got %g", name, xPU)
		}
		out = append(out, branch{from: fi, to: ti, suscept: 1 / xPU, line: line})
		return nil
	}
	for _, l := range n.Lines {
		if !l.Active {
			continue
		}
		if err := add(l.Name, l.From, l.To, l.ReactancePU, l.Name); err != nil {
			return nil, err
		}
	}
	for _, t := range n.Transformers {
		if !t.Active {
			continue
		}
		if err := add(t.Name, t.From, t.To, t.ReactancePU, ""); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// injections builds the per-unit net injection vector: generation dispatched
// proportionally to capability, minus load. The first generator's bus is the
// slack reference.
func injections(n *domain.Network, busIdx map[string]int) ([]float64, int, error) {
	if len(n.Generators) == 0 {
		return nil, 0, fmt.Errorf("%w: no generators", ErrNotConverged)
	}

	totalLoad, totalCap := 0.0, 0.0
	for _, l := range n.Loads {
		totalLoad += l.PSetMW
	}
	for _, g := range n.Generators {
		totalCap += g.PMaxMW
	}
	if totalCap <= 0 {
		return nil, 0, fmt.Errorf("%w: zero generation capability", ErrNotConverged)
	}

	inj := make([]float64, len(n.Buses))
	for _, g := range n.Generators {
		i, ok := busIdx[g.Bus]
		if !ok {
			return nil, 0, fmt.Errorf("generator %q: unknown bus %q", g.Name, g.Bus)
		}
		inj[i] += totalLoad * (g.PMaxMW / totalCap) / BaseMVA
	}
	for _, l := range n.Loads {
		i, ok := busIdx[l.Bus]
		if !ok {
			return nil, 0, fmt.Errorf("load %q: unknown bus %q", l.Name, l.Bus)
		}
		inj[i] -= l.PSetMW / BaseMVA
	}

	slack := busIdx[n.Generators[0].Bus]
	return inj, slack, nil
}

// solveAngles solves the reduced susceptance system with the slack row and
// column removed. A singular system means the active branches no longer
// span the network.
func solveAngles(nBus, slack int, branches []branch, inj []float64) ([]float64, error) {
	// Map full bus indices to reduced indices, skipping the slack.
	red := make([]int, nBus)
	for i := range red {
		switch {
		case i < slack:
			red[i] = i
		case i == slack:
			red[i] = -1
		default:
			red[i] = i - 1
		}
	}

	dim := nBus - 1
	if dim == 0 {
		return make([]float64, nBus), nil
	}
	b := mat.NewDense(dim, dim, nil)
	for _, br := range branches {
		fi, ti := red[br.from], red[br.to]
		if fi >= 0 {
			b.Set(fi, fi, b.At(fi, fi)+br.suscept)
		}
		if ti >= 0 {
			b.Set(ti, ti, b.At(ti, ti)+br.suscept)
		}
		if fi >= 0 && ti >= 0 {
			b.Set(fi, ti, b.At(fi, ti)-br.suscept)
			b.Set(ti, fi, b.At(ti, fi)-br.suscept)
		}
	}

	p := mat.NewVecDense(dim, nil)
	for i, v := range inj {
		if red[i] >= 0 {
			p.SetVec(red[i], v)
		}
	}

	var reduced mat.VecDense
	if err := reduced.SolveVec(b, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}

	theta := make([]float64, nBus)
	for i := range theta {
		if red[i] >= 0 {
			theta[i] = reduced.AtVec(red[i])
		}
	}
	return theta, nil
}
