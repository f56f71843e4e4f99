package powerflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/line-rating-service/internal/domain"
)

func twoBus() *domain.Network {
	return &domain.Network{
		Buses: []domain.Bus{
			{Name: "gen", VNomKV: 69},
			{Name: "load", VNomKV: 69},
		},
		Lines: []domain.Line{
			{Name: "L1", From: "gen", To: "load", ReactancePU: 0.1, Active: true},
		},
		Loads:      []domain.Load{{Name: "load-1", Bus: "load", PSetMW: 50}},
		Generators: []domain.Generator{{Name: "gen-1", Bus: "gen", PMaxMW: 100}},
	}
}

func TestDCSolverTwoBus(t *testing.T) {
	// A single branch carries the whole load regardless of reactance.
	flows, err := DCSolver{}.Solve(context.Background(), twoBus())
	require.NoError(t, err)

	require.Len(t, flows, 1)
	assert.InDelta(t, 50.0, flows["L1"], 1e-9)
}

func TestDCSolverParallelPaths(t *testing.T) {
	// Two parallel branches split inversely to reactance: the 0.1 pu branch
	// takes twice the flow of the 0.2 pu branch.
	n := twoBus()
	n.Lines = append(n.Lines, domain.Line{
		Name: "L2", From: "gen", To: "load", ReactancePU: 0.2, Active: true,
	})

	flows, err := DCSolver{}.Solve(context.Background(), n)
	require.NoError(t, err)

	assert.InDelta(t, 50.0/1.5, flows["L1"], 1e-9)
	assert.InDelta(t, 25.0/1.5, flows["L2"], 1e-9)
	assert.InDelta(t, 50.0, flows["L1"]+flows["L2"], 1e-9)
}

func TestDCSolverTransformerBranch(t *testing.T) {
	// A transformer carries flow but never appears in the result map.
	n := &domain.Network{
		Buses: []domain.Bus{
			{Name: "gen", VNomKV: 69},
			{Name: "mid", VNomKV: 69},
			{Name: "load", VNomKV: 138},
		},
		Lines: []domain.Line{
			{Name: "L1", From: "gen", To: "mid", ReactancePU: 0.1, Active: true},
		},
		Transformers: []domain.Transformer{
			{Name: "T1", From: "mid", To: "load", ReactancePU: 0.05, Active: true},
		},
		Loads:      []domain.Load{{Name: "load-1", Bus: "load", PSetMW: 30}},
		Generators: []domain.Generator{{Name: "gen-1", Bus: "gen", PMaxMW: 100}},
	}

	flows, err := DCSolver{}.Solve(context.Background(), n)
	require.NoError(t, err)

	require.Len(t, flows, 1)
	assert.InDelta(t, 30.0, flows["L1"], 1e-9)
}

func TestDCSolverIslandedTopology(t *testing.T) {
	// Outaging the only branch islands the load bus from the slack; the
	// reduced susceptance matrix goes singular.
	n := twoBus()
	n.Lines[0].Active = false

	_, err := DCSolver{}.Solve(context.Background(), n)
	require.ErrorIs(t, err, ErrNotConverged)
}

func TestDCSolverDegenerateInputs(t *testing.T) {
	t.Run("empty network", func(t *testing.T) {
		_, err := DCSolver{}.Solve(context.Background(), &domain.Network{})
		require.ErrorIs(t, err, ErrNotConverged)
	})

	t.Run("no generators", func(t *testing.T) {
		n := twoBus()
		n.Generators = nil
		_, err := DCSolver{}.Solve(context.Background(), n)
		require.ErrorIs(t, err, ErrNotConverged)
	})

	t.Run("zero generation capability", func(t *testing.T) {
		n := twoBus()
		n.Generators[0].PMaxMW = 0
		_, err := DCSolver{}.Solve(context.Background(), n)
		require.ErrorIs(t, err, ErrNotConverged)
	})

	t.Run("non-positive reactance", func(t *testing.T) {
		n := twoBus()
		n.Lines[0].ReactancePU = 0
		_, err := DCSolver{}.Solve(context.Background(), n)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotConverged)
	})

	t.Run("unknown branch bus", func(t *testing.T) {
		n := twoBus()
		n.Lines[0].To = "nowhere"
		_, err := DCSolver{}.Solve(context.Background(), n)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown bus "nowhere"`)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := DCSolver{}.Solve(ctx, twoBus())
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDCSolverProportionalDispatch(t *testing.T) {
	// Two generators share the 60 MW load 2:1 by capability, so the branch
	// from the smaller unit's bus carries its 20 MW share.
	n := &domain.Network{
		Buses: []domain.Bus{
			{Name: "big", VNomKV: 69},
			{Name: "small", VNomKV: 69},
			{Name: "city", VNomKV: 69},
		},
		Lines: []domain.Line{
			{Name: "big-city", From: "big", To: "city", ReactancePU: 0.1, Active: true},
			{Name: "small-city", From: "small", To: "city", ReactancePU: 0.1, Active: true},
		},
		Loads: []domain.Load{{Name: "city-load", Bus: "city", PSetMW: 60}},
		Generators: []domain.Generator{
			{Name: "gen-big", Bus: "big", PMaxMW: 200},
			{Name: "gen-small", Bus: "small", PMaxMW: 100},
		},
	}

	flows, err := DCSolver{}.Solve(context.Background(), n)
	require.NoError(t, err)

	assert.InDelta(t, 40.0, flows["big-city"], 1e-9)
	assert.InDelta(t, 20.0, flows["small-city"], 1e-9)
}
