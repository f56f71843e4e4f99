// Package pipeline runs the rating-to-stress evaluation for one scenario:
// shape loads for the hour of day, compute each line's dynamic capacity
// from the atmospheric conditions, install the capacities on the topology,
// hand the topology to the flow solver, and classify every line against its
// static and dynamic capacities.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
)

// Solver is the external flow-solver boundary: topology with assigned
// capacities in, per-line apparent MVA keyed by line name out, or an error
// wrapping powerflow.ErrNotConverged.
type Solver interface {
	Solve(ctx context.Context, n *domain.Network) (map[string]float64, error)
}

// Evaluator composes the conductor catalog, load shape, and flow solver
// into the single-scenario pipeline.
type Evaluator struct {
	catalog *domain.Catalog
	solver  Solver
	shape   domain.LoadShape
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Evaluator.
func New(catalog *domain.Catalog, solver Solver, shape domain.LoadShape, logger *slog.Logger, metrics *observability.Metrics) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		solver:  solver,
		shape:   shape,
		logger:  logger,
		metrics: metrics,
	}
}

// Evaluate runs the full pipeline for one scenario. The caller's snapshot
// is never mutated; the pipeline works on a private clone. A solver failure
// is returned to the caller (wrapping powerflow.ErrNotConverged) with no
// stress rows.
func (e *Evaluator) Evaluate(ctx context.Context, base *domain.Network, cond domain.Resolved) ([]domain.LineStress, error) {
	work := base.Clone()

	for i := range work.Loads {
		work.Loads[i].PSetMW = e.shape.Apply(work.Loads[i].PSetMW, cond.HourOfDay)
	}

	rated := make(map[string]float64, len(work.Lines))
	for i := range work.Lines {
		line := &work.Lines[i]
		if !line.Active {
			continue
		}

		spec, err := e.catalog.Spec(line.Conductor)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line.Name, err)
		}
		from, to, err := work.LineEndpoints(*line)
		if err != nil {
			return nil, err
		}
		orient := domain.OrientationBetween(from.X, from.Y, to.X, to.Y)

		rating, err := domain.RateConductor(spec, cond, orient, line.MOTC)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line.Name, err)
		}
		e.metrics.RatingsComputed.Inc()

		line.CapacityMVA = rating.MVA(from.VNomKV)

		staticMVA, err := e.catalog.RatedMVA(line.Conductor, line.MOTC, from.VNomKV)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line.Name, err)
		}
		rated[line.Name] = staticMVA
	}

	flows, err := e.solver.Solve(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("flow solve: %w", err)
	}

	results := make([]domain.LineStress, 0, len(work.Lines))
	for _, line := range work.Lines {
		if !line.Active {
			continue
		}
		results = append(results, domain.ClassifyLine(
			line.Name,
			flows[line.Name],
			rated[line.Name],
			line.CapacityMVA,
		))
	}

	e.logger.Debug("scenario evaluated", "lines", len(results))
	return results, nil
}
