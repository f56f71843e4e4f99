package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
	"github.com/couchcryptid/line-rating-service/internal/pipeline"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
)

// fakeSolver returns canned flows and records the topology it was handed.
type fakeSolver struct {
	flows map[string]float64
	err   error
	seen  *domain.Network
}

func (f *fakeSolver) Solve(_ context.Context, n *domain.Network) (map[string]float64, error) {
	f.seen = n
	if f.err != nil {
		return nil, f.err
	}
	return f.flows, nil
}

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog(
		[]domain.ConductorSpec{{
			Name: "ORIOLE", DiameterIn: 0.741,
			TLoC: 25, RLo: 0.2850 / 5280,
			THiC: 50, RHi: 0.3110 / 5280,
		}},
		[]domain.StaticRating{{
			Conductor: "ORIOLE", MOTC: 75, Amps: 531,
			MVAByKV: map[int]float64{69: 63},
		}},
	)
	require.NoError(t, err)
	return catalog
}

func testConditions(t *testing.T) domain.Resolved {
	t.Helper()
	cond, err := domain.Conditions{
		AmbientTempC: domain.Opt(25.0),
		WindSpeedFtS: domain.Opt(2.0),
		WindAngleDeg: domain.Opt(90.0),
		ElevationFt:  domain.Opt(1000.0),
		LatitudeDeg:  domain.Opt(27.0),
		Date:         domain.Opt("12 Jun"),
		HourOfDay:    domain.Opt(12.0),
		Emissivity:   domain.Opt(0.8),
		Absorptivity: domain.Opt(0.8),
		Atmosphere:   domain.Opt(domain.AtmosphereClear),
	}.Resolve()
	require.NoError(t, err)
	return cond
}

func testNetwork() *domain.Network {
	return &domain.Network{
		Buses: []domain.Bus{
			{Name: "gen", VNomKV: 69, X: 0, Y: 0},
			{Name: "load", VNomKV: 69, X: 10, Y: 0},
		},
		Lines: []domain.Line{
			{Name: "L1", From: "gen", To: "load", Conductor: "ORIOLE", MOTC: 75, ReactancePU: 0.1, Active: true},
			{Name: "L2", From: "gen", To: "load", Conductor: "ORIOLE", MOTC: 75, ReactancePU: 0.2, Active: false},
		},
		Loads:      []domain.Load{{Name: "city", Bus: "load", PSetMW: 50}},
		Generators: []domain.Generator{{Name: "plant", Bus: "gen", PMaxMW: 100}},
	}
}

func newEvaluatorWithCatalog(t *testing.T, solver pipeline.Solver) *pipeline.Evaluator {
	shape, err := domain.NewLoadShape(4, 17, 0.15)
	require.NoError(t, err)
	return pipeline.New(testCatalog(t), solver, shape, slog.Default(), observability.NewMetricsForTesting())
}

func TestEvaluate(t *testing.T) {
	solver := &fakeSolver{flows: map[string]float64{"L1": 55}}
	e := newEvaluatorWithCatalog(t, solver)

	stress, err := e.Evaluate(context.Background(), testNetwork(), testConditions(t))
	require.NoError(t, err)

	require.Len(t, stress, 1, "inactive lines are not classified")
	s := stress[0]
	assert.Equal(t, "L1", s.Line)
	assert.Equal(t, 55.0, s.ApparentLoadMVA)
	assert.Equal(t, 63.0, s.RatedCapacityMVA)
	assert.InDelta(t, 62.31, s.ActualCapacityMVA, 0.01)
	assert.False(t, s.AtRisk, "dynamic capacity is below nameplate under reference conditions")
	assert.False(t, s.Overcapacity)
	assert.InDelta(t, 55.0/63, s.LoadPercent, 1e-9)
}

func TestEvaluateInstallsCapacitiesBeforeSolve(t *testing.T) {
	solver := &fakeSolver{flows: map[string]float64{"L1": 10}}
	e := newEvaluatorWithCatalog(t, solver)

	_, err := e.Evaluate(context.Background(), testNetwork(), testConditions(t))
	require.NoError(t, err)

	require.NotNil(t, solver.seen)
	assert.InDelta(t, 62.31, solver.seen.Lines[0].CapacityMVA, 0.01)
	assert.Zero(t, solver.seen.Lines[1].CapacityMVA, "inactive lines are not rated")
}

func TestEvaluateShapesLoads(t *testing.T) {
	solver := &fakeSolver{flows: map[string]float64{"L1": 10}}
	e := newEvaluatorWithCatalog(t, solver)

	cond := testConditions(t)
	cond.HourOfDay = 19 // sinusoid peak for a 4..17 window

	_, err := e.Evaluate(context.Background(), testNetwork(), cond)
	require.NoError(t, err)

	require.NotNil(t, solver.seen)
	assert.InDelta(t, 57.5, solver.seen.Loads[0].PSetMW, 1e-9)
}

func TestEvaluateNeverMutatesBase(t *testing.T) {
	solver := &fakeSolver{flows: map[string]float64{"L1": 10}}
	e := newEvaluatorWithCatalog(t, solver)

	base := testNetwork()
	want := base.Clone()

	_, err := e.Evaluate(context.Background(), base, testConditions(t))
	require.NoError(t, err)

	assert.Equal(t, want, base)
	assert.NotSame(t, base, solver.seen)
}

func TestEvaluateErrors(t *testing.T) {
	t.Run("unknown conductor", func(t *testing.T) {
		e := newEvaluatorWithCatalog(t, &fakeSolver{})
		n := testNetwork()
		n.Lines[0].Conductor = "UNOBTAINIUM"

		_, err := e.Evaluate(context.Background(), n, testConditions(t))
		require.ErrorIs(t, err, domain.ErrUnknownConductor)
		assert.Contains(t, err.Error(), `line "L1"`)
	})

	t.Run("missing ratings row", func(t *testing.T) {
		e := newEvaluatorWithCatalog(t, &fakeSolver{})
		n := testNetwork()
		n.Lines[0].MOTC = 100

		_, err := e.Evaluate(context.Background(), n, testConditions(t))
		require.ErrorIs(t, err, domain.ErrNoRating)
	})

	t.Run("solver non-convergence propagates", func(t *testing.T) {
		solver := &fakeSolver{err: powerflow.ErrNotConverged}
		e := newEvaluatorWithCatalog(t, solver)

		_, err := e.Evaluate(context.Background(), testNetwork(), testConditions(t))
		require.ErrorIs(t, err, powerflow.ErrNotConverged)
	})

	t.Run("other solver errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		e := newEvaluatorWithCatalog(t, &fakeSolver{err: boom})

		_, err := e.Evaluate(context.Background(), testNetwork(), testConditions(t))
		require.ErrorIs(t, err, boom)
	})
}

func TestEvaluateWithRealSolver(t *testing.T) {
	shape, err := domain.NewLoadShape(4, 17, 0)
	require.NoError(t, err)
	e := pipeline.New(testCatalog(t), powerflow.DCSolver{}, shape, slog.Default(), observability.NewMetricsForTesting())

	stress, err := e.Evaluate(context.Background(), testNetwork(), testConditions(t))
	require.NoError(t, err)

	require.Len(t, stress, 1)
	assert.InDelta(t, 50.0, stress[0].ApparentLoadMVA, 1e-9)
	assert.InDelta(t, 50.0/63, stress[0].LoadPercent, 1e-9)
}
