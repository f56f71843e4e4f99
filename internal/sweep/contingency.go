// Package sweep orchestrates repeated runs of the rating pipeline over
// isolated snapshots of a base network: the N-1 contingency sweep varies
// which component is out of service, the sensitivity sweep varies one
// atmospheric parameter. Scenarios are independent, each on its own clone
// of the snapshot, so both sweeps run on a bounded worker pool with no
// shared mutable state beyond the read-only base and conductor catalog.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
)

// SolveFailedSentinel is the affected-line marker for a contingency whose
// flow solve did not converge. Such a contingency contributes exactly one
// record and does not abort the sweep.
const SolveFailedSentinel = "flow solve failed"

// Pipeline evaluates one scenario. Implemented by pipeline.Evaluator.
type Pipeline interface {
	Evaluate(ctx context.Context, base *domain.Network, cond domain.Resolved) ([]domain.LineStress, error)
}

// Record is one (outaged component, affected line) contingency result row.
// Only lines that are at risk or overcapacity under the outage produce
// records, plus one sentinel per failed solve.
type Record struct {
	OutagedComponent string               `json:"outaged_component"`
	ComponentType    domain.ComponentType `json:"outaged_component_type"`
	AffectedLine     string               `json:"affected_line"`
	ApparentLoadMVA  float64              `json:"apparent_load_mva"`
	RatedCapacityMVA float64              `json:"rated_capacity_mva"`
	ActualCapacity   float64              `json:"actual_capacity_mva"`
	AtRisk           bool                 `json:"at_risk"`
	Overcapacity     bool                 `json:"overcapacity"`
	LoadPercent      float64              `json:"load_percent"`
	SolveFailed      bool                 `json:"solve_failed,omitempty"`
}

// Report is the collected output of one contingency sweep. It lives until
// the next sweep replaces it; ranking and filtering operate on the full
// record set after the sweep completes.
type Report struct {
	RunID              string    `json:"run_id"`
	GeneratedAt        time.Time `json:"generated_at"`
	ComponentsAnalyzed int       `json:"components_analyzed"`
	SolveFailures      int       `json:"solve_failures"`
	Records            []Record  `json:"records"`
}

// Summary aggregates a report for logging and export headers.
type Summary struct {
	ComponentsAnalyzed   int `json:"components_analyzed"`
	ComponentsWithIssues int `json:"components_with_issues"`
	AffectedLines        int `json:"affected_lines"`
	Overloads            int `json:"overloads"`
	AtRisk               int `json:"at_risk"`
	SolveFailures        int `json:"solve_failures"`
}

// Contingency runs N-1 outage sweeps against a base network.
type Contingency struct {
	pipeline Pipeline
	logger   *slog.Logger
	metrics  *observability.Metrics
	workers  int
}

// NewContingency creates a sweep engine with a fixed-size worker pool.
// workers < 1 is treated as 1.
func NewContingency(p Pipeline, logger *slog.Logger, metrics *observability.Metrics, workers int) *Contingency {
	if workers < 1 {
		workers = 1
	}
	return &Contingency{pipeline: p, logger: logger, metrics: metrics, workers: workers}
}

type candidate struct {
	name string
	kind domain.ComponentType
}

// Run performs the N-1 sweep: for every active component of the requested
// types, clone the base, take the component out of service, run the full
// pipeline under the fixed conditions, and collect every at-risk or
// overcapacity line. Non-convergence for one candidate yields a sentinel
// record and the sweep continues; any other pipeline error aborts the sweep.
// The base network is never mutated.
func (c *Contingency) Run(ctx context.Context, base *domain.Network, cond domain.Resolved, kinds []domain.ComponentType) (*Report, error) {
	if len(kinds) == 0 {
		kinds = []domain.ComponentType{domain.ComponentLine}
	}
	candidates := collectCandidates(base, kinds)

	start := clock.Now()
	c.metrics.SweepRunning.Set(1)
	defer c.metrics.SweepRunning.Set(0)

	report := &Report{
		RunID:              uuid.NewString(),
		ComponentsAnalyzed: len(candidates),
	}
	c.logger.Info("contingency sweep started",
		"run_id", report.RunID, "candidates", len(candidates), "workers", c.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, cand := range candidates {
		// Stop launching new scenarios once the context is done; scenarios
		// already in flight complete on their own private clones.
		if gctx.Err() != nil {
			break
		}
		cand := cand
		g.Go(func() error {
			records, failed, err := c.analyzeOutage(gctx, base, cond, cand)
			if err != nil {
				return err
			}
			mu.Lock()
			report.Records = append(report.Records, records...)
			if failed {
				report.SolveFailures++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.GeneratedAt = clock.Now()
	c.metrics.SweepDuration.WithLabelValues("contingency").Observe(report.GeneratedAt.Sub(start).Seconds())
	c.logger.Info("contingency sweep finished",
		"run_id", report.RunID,
		"records", len(report.Records),
		"solve_failures", report.SolveFailures,
	)
	return report, nil
}

// AnalyzeOutage evaluates a single named outage and returns its records.
func (c *Contingency) AnalyzeOutage(ctx context.Context, base *domain.Network, cond domain.Resolved, kind domain.ComponentType, name string) ([]Record, error) {
	records, _, err := c.analyzeOutage(ctx, base, cond, candidate{name: name, kind: kind})
	return records, err
}

func (c *Contingency) analyzeOutage(ctx context.Context, base *domain.Network, cond domain.Resolved, cand candidate) ([]Record, bool, error) {
	snap := base.Clone()
	snap.Deactivate(cand.kind, cand.name)

	stress, err := c.pipeline.Evaluate(ctx, snap, cond)
	switch {
	case errors.Is(err, powerflow.ErrNotConverged):
		c.metrics.ScenariosEvaluated.WithLabelValues("contingency", "solve_failed").Inc()
		c.logger.Warn("contingency flow solve failed",
			"component", cand.name, "type", cand.kind, "error", err)
		return []Record{{
			OutagedComponent: cand.name,
			ComponentType:    cand.kind,
			AffectedLine:     SolveFailedSentinel,
			SolveFailed:      true,
		}}, true, nil
	case err != nil:
		return nil, false, err
	}
	c.metrics.ScenariosEvaluated.WithLabelValues("contingency", "ok").Inc()

	var records []Record
	for _, s := range stress {
		if !s.AtRisk && !s.Overcapacity {
			continue
		}
		records = append(records, Record{
			OutagedComponent: cand.name,
			ComponentType:    cand.kind,
			AffectedLine:     s.Line,
			ApparentLoadMVA:  s.ApparentLoadMVA,
			RatedCapacityMVA: s.RatedCapacityMVA,
			ActualCapacity:   s.ActualCapacityMVA,
			AtRisk:           s.AtRisk,
			Overcapacity:     s.Overcapacity,
			LoadPercent:      s.LoadPercent,
		})
		c.metrics.ContingencyRecords.Inc()
	}
	return records, false, nil
}

func collectCandidates(n *domain.Network, kinds []domain.ComponentType) []candidate {
	var out []candidate
	for _, kind := range kinds {
		switch kind {
		case domain.ComponentLine:
			for _, l := range n.Lines {
				if l.Active {
					out = append(out, candidate{name: l.Name, kind: kind})
				}
			}
		case domain.ComponentTransformer:
			for _, t := range n.Transformers {
				if t.Active {
					out = append(out, candidate{name: t.Name, kind: kind})
				}
			}
		}
	}
	return out
}

// Summarize computes aggregate counts over the record set.
func (r *Report) Summarize() Summary {
	s := Summary{
		ComponentsAnalyzed: r.ComponentsAnalyzed,
		SolveFailures:      r.SolveFailures,
	}
	seen := make(map[string]struct{})
	for _, rec := range r.Records {
		seen[rec.OutagedComponent] = struct{}{}
		if rec.SolveFailed {
			continue
		}
		s.AffectedLines++
		if rec.Overcapacity {
			s.Overloads++
		}
		if rec.AtRisk {
			s.AtRisk++
		}
	}
	s.ComponentsWithIssues = len(seen)
	return s
}

// WorstN returns the n highest-load records, sentinels excluded.
func (r *Report) WorstN(n int) []Record {
	filtered := make([]Record, 0, len(r.Records))
	for _, rec := range r.Records {
		if !rec.SolveFailed {
			filtered = append(filtered, rec)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].LoadPercent > filtered[j].LoadPercent
	})
	if n > len(filtered) {
		n = len(filtered)
	}
	return filtered[:n]
}

// ByOutage returns all records for one outaged component.
func (r *Report) ByOutage(component string) []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.OutagedComponent == component {
			out = append(out, rec)
		}
	}
	return out
}
