package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNetwork() *Network {
	return &Network{
		Buses: []Bus{
			{Name: "north", VNomKV: 69, X: 0, Y: 10},
			{Name: "south", VNomKV: 69, X: 0, Y: 0},
			{Name: "east", VNomKV: 138, X: 10, Y: 0},
		},
		Lines: []Line{
			{Name: "L1", From: "north", To: "south", Conductor: "ORIOLE", MOTC: 75, ReactancePU: 0.1, Active: true},
			{Name: "L2", From: "south", To: "missing", Conductor: "ORIOLE", MOTC: 75, ReactancePU: 0.1, Active: true},
		},
		Transformers: []Transformer{
			{Name: "T1", From: "south", To: "east", ReactancePU: 0.05, Active: true},
		},
		Loads:      []Load{{Name: "load-south", Bus: "south", PSetMW: 40}},
		Generators: []Generator{{Name: "gen-north", Bus: "north", PMaxMW: 100}},
	}
}

func TestNetworkClone(t *testing.T) {
	base := testNetwork()
	clone := base.Clone()

	clone.Lines[0].Active = false
	clone.Lines[0].CapacityMVA = 62.3
	clone.Loads[0].PSetMW = 999
	clone.Transformers[0].Active = false
	clone.Buses = append(clone.Buses, Bus{Name: "west"})

	assert.True(t, base.Lines[0].Active)
	assert.Zero(t, base.Lines[0].CapacityMVA)
	assert.Equal(t, 40.0, base.Loads[0].PSetMW)
	assert.True(t, base.Transformers[0].Active)
	assert.Len(t, base.Buses, 3)
}

func TestNetworkDeactivate(t *testing.T) {
	t.Run("line", func(t *testing.T) {
		n := testNetwork()
		require.True(t, n.Deactivate(ComponentLine, "L1"))
		assert.False(t, n.Lines[0].Active)
	})

	t.Run("transformer", func(t *testing.T) {
		n := testNetwork()
		require.True(t, n.Deactivate(ComponentTransformer, "T1"))
		assert.False(t, n.Transformers[0].Active)
	})

	t.Run("unknown name", func(t *testing.T) {
		n := testNetwork()
		assert.False(t, n.Deactivate(ComponentLine, "L99"))
	})

	t.Run("type mismatch", func(t *testing.T) {
		n := testNetwork()
		assert.False(t, n.Deactivate(ComponentTransformer, "L1"))
		assert.True(t, n.Lines[0].Active)
	})
}

func TestLineEndpoints(t *testing.T) {
	n := testNetwork()

	t.Run("resolves both buses", func(t *testing.T) {
		from, to, err := n.LineEndpoints(n.Lines[0])
		require.NoError(t, err)
		assert.Equal(t, "north", from.Name)
		assert.Equal(t, "south", to.Name)
	})

	t.Run("unknown bus", func(t *testing.T) {
		_, _, err := n.LineEndpoints(n.Lines[1])
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown bus "missing"`)
	})

	t.Run("terminal voltage mismatch", func(t *testing.T) {
		bad := Line{Name: "L3", From: "south", To: "east"}
		_, _, err := n.LineEndpoints(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "terminal voltages differ")
	})
}
