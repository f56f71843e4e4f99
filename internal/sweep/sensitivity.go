package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
)

// Param identifies which atmospheric field a sensitivity sweep varies.
type Param struct {
	Name string
	set  func(v float64) domain.Conditions
}

var (
	// ParamAmbientTemp sweeps ambient temperature in °C.
	ParamAmbientTemp = Param{
		Name: "ambient_temp_c",
		set:  func(v float64) domain.Conditions { return domain.Conditions{AmbientTempC: &v} },
	}
	// ParamWindSpeed sweeps wind speed in ft/s.
	ParamWindSpeed = Param{
		Name: "wind_speed_ft_s",
		set:  func(v float64) domain.Conditions { return domain.Conditions{WindSpeedFtS: &v} },
	}
)

// Range is a [Min, Max] sweep with the requested step. Steps below the
// engine's configured floor are widened, not rejected.
type Range struct {
	Min, Max, Step float64
}

// DefaultRange returns the customary sweep window for a parameter:
// 15..50°C in 5°C steps for ambient temperature, 0.5..10 ft/s in 2 ft/s
// steps for wind speed.
func DefaultRange(p Param) Range {
	if p.Name == ParamWindSpeed.Name {
		return Range{Min: 0.5, Max: 10, Step: 2}
	}
	return Range{Min: 15, Max: 50, Step: 5}
}

// Sample holds the full line classification at one parameter value.
type Sample struct {
	Value  float64             `json:"value"`
	Stress []domain.LineStress `json:"stress"`
}

// SensitivityReport is the output of one sweep. Samples are ordered by
// parameter value ascending; failed samples are dropped and counted.
type SensitivityReport struct {
	RunID       string    `json:"run_id"`
	Parameter   string    `json:"parameter"`
	StepUsed    float64   `json:"step_used"`
	Samples     []Sample  `json:"samples"`
	Skipped     int       `json:"skipped"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Vulnerability ranks one line by the first parameter value at which its
// load crosses 100% of rated capacity. CriticalValue is nil for lines that
// never cross.
type Vulnerability struct {
	Line           string   `json:"line"`
	CriticalValue  *float64 `json:"critical_value,omitempty"`
	MaxLoadPercent float64  `json:"max_load_percent"`
}

// CurvePoint is one (parameter value, load percent) pair for a line.
type CurvePoint struct {
	Value       float64 `json:"value"`
	LoadPercent float64 `json:"load_percent"`
}

// Sensitivity runs parametric sweeps against a base network.
type Sensitivity struct {
	pipeline  Pipeline
	logger    *slog.Logger
	metrics   *observability.Metrics
	workers   int
	stepFloor float64
}

// NewSensitivity creates a sweep engine. stepFloor is the minimum step size
// enforced for downstream solver stability; requested steps below it are
// widened with a warning.
func NewSensitivity(p Pipeline, logger *slog.Logger, metrics *observability.Metrics, workers int, stepFloor float64) *Sensitivity {
	if workers < 1 {
		workers = 1
	}
	return &Sensitivity{pipeline: p, logger: logger, metrics: metrics, workers: workers, stepFloor: stepFloor}
}

// Run sweeps the parameter across the range. Every sample starts from a
// clean clone of the base network with the base conditions plus the single
// overridden field. Individual sample failures (non-convergence) are
// skipped and counted, never fatal; any other error aborts the sweep.
func (s *Sensitivity) Run(ctx context.Context, base *domain.Network, baseCond domain.Conditions, param Param, r Range) (*SensitivityReport, error) {
	if r.Step <= 0 {
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("sweep step must be positive, got %g", r.Step)}
	}
	if r.Min > r.Max {
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("sweep range inverted: [%g, %g]", r.Min, r.Max)}
	}

	step := r.Step
	if step < s.stepFloor {
		s.logger.Warn("sweep step below stability floor, widening",
			"requested", r.Step, "floor", s.stepFloor)
		step = s.stepFloor
	}

	values := sampleValues(r.Min, r.Max, step)

	start := clock.Now()
	s.metrics.SweepRunning.Set(1)
	defer s.metrics.SweepRunning.Set(0)

	report := &SensitivityReport{
		RunID:     uuid.NewString(),
		Parameter: param.Name,
		StepUsed:  step,
	}
	s.logger.Info("sensitivity sweep started",
		"run_id", report.RunID, "parameter", param.Name,
		"samples", len(values), "step", step)

	results := make([]*Sample, len(values))
	var skipped int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	var mu sync.Mutex

	for i, v := range values {
		if gctx.Err() != nil {
			break
		}
		i, v := i, v
		g.Go(func() error {
			cond, err := baseCond.Merge(param.set(v)).Resolve()
			if err != nil {
				return err
			}
			stress, err := s.pipeline.Evaluate(gctx, base, cond)
			if errors.Is(err, powerflow.ErrNotConverged) {
				s.metrics.ScenariosEvaluated.WithLabelValues("sensitivity", "solve_failed").Inc()
				s.metrics.SamplesSkipped.Inc()
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			s.metrics.ScenariosEvaluated.WithLabelValues("sensitivity", "ok").Inc()
			results[i] = &Sample{Value: v, Stress: stress}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, sample := range results {
		if sample != nil {
			report.Samples = append(report.Samples, *sample)
		}
	}
	report.Skipped = int(skipped)
	report.GeneratedAt = clock.Now()
	s.metrics.SweepDuration.WithLabelValues("sensitivity").Observe(report.GeneratedAt.Sub(start).Seconds())
	s.logger.Info("sensitivity sweep finished",
		"run_id", report.RunID, "samples", len(report.Samples), "skipped", report.Skipped)
	return report, nil
}

// sampleValues enumerates min..max inclusive at the given step. A small
// epsilon keeps the endpoint from falling out due to float accumulation.
func sampleValues(min, max, step float64) []float64 {
	eps := step * 1e-9
	var out []float64
	for v := min; v <= max+eps; v += step {
		out = append(out, math.Min(v, max))
	}
	return out
}

// Curve returns the load-vs-parameter points for one line, in sample order.
func (r *SensitivityReport) Curve(line string) []CurvePoint {
	var out []CurvePoint
	for _, s := range r.Samples {
		for _, st := range s.Stress {
			if st.Line == line {
				out = append(out, CurvePoint{Value: s.Value, LoadPercent: st.LoadPercent})
			}
		}
	}
	return out
}

// VulnerabilityRanking orders lines by the first sample value at which load
// reaches 100% of rated capacity, ascending. Lines that never cross rank
// strictly after every line that does, regardless of their maximum load;
// ties keep discovery order.
func (r *SensitivityReport) VulnerabilityRanking() []Vulnerability {
	order := make([]string, 0)
	byLine := make(map[string]*Vulnerability)

	for _, sample := range r.Samples {
		for _, st := range sample.Stress {
			v, ok := byLine[st.Line]
			if !ok {
				v = &Vulnerability{Line: st.Line}
				byLine[st.Line] = v
				order = append(order, st.Line)
			}
			if st.LoadPercent > v.MaxLoadPercent {
				v.MaxLoadPercent = st.LoadPercent
			}
			if v.CriticalValue == nil && st.LoadPercent >= 1.0 {
				value := sample.Value
				v.CriticalValue = &value
			}
		}
	}

	out := make([]Vulnerability, 0, len(order))
	for _, name := range order {
		out = append(out, *byLine[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i].CriticalValue, out[j].CriticalValue
		switch {
		case vi == nil:
			return false
		case vj == nil:
			return true
		default:
			return *vi < *vj
		}
	})
	return out
}
