package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResistanceAt(t *testing.T) {
	spec := ConductorSpec{
		Name: "ORIOLE", DiameterIn: 0.741,
		TLoC: 25, RLo: 0.2850 / 5280,
		THiC: 50, RHi: 0.3110 / 5280,
	}

	t.Run("exact at reference points", func(t *testing.T) {
		r, err := spec.ResistanceAt(25)
		require.NoError(t, err)
		assert.Equal(t, 0.2850/5280, r)

		r, err = spec.ResistanceAt(50)
		require.NoError(t, err)
		assert.Equal(t, 0.3110/5280, r)
	})

	t.Run("interpolates between references", func(t *testing.T) {
		r, err := spec.ResistanceAt(37.5)
		require.NoError(t, err)
		assert.InDelta(t, 0.2980/5280, r, 1e-12)
	})

	t.Run("extrapolates past the high reference", func(t *testing.T) {
		r, err := spec.ResistanceAt(75)
		require.NoError(t, err)
		assert.InDelta(t, 0.3370/5280, r, 1e-12)
		assert.Greater(t, r, spec.RHi)
	})

	t.Run("degenerate span", func(t *testing.T) {
		bad := spec
		bad.THiC = bad.TLoC
		_, err := bad.ResistanceAt(75)
		require.ErrorIs(t, err, ErrResistanceSpan)
		assert.Contains(t, err.Error(), "ORIOLE")
	})
}

func TestNewCatalog(t *testing.T) {
	valid := ConductorSpec{
		Name: "DRAKE", DiameterIn: 1.108,
		TLoC: 25, RLo: 0.1180 / 5280,
		THiC: 50, RHi: 0.1290 / 5280,
	}

	t.Run("valid specs accepted", func(t *testing.T) {
		c, err := NewCatalog([]ConductorSpec{valid}, nil)
		require.NoError(t, err)
		got, err := c.Spec("DRAKE")
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	})

	t.Run("rejects inverted temperature references", func(t *testing.T) {
		bad := valid
		bad.TLoC, bad.THiC = 50, 25
		_, err := NewCatalog([]ConductorSpec{bad}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TLo < THi")
	})

	t.Run("rejects non-increasing resistance", func(t *testing.T) {
		bad := valid
		bad.RHi = bad.RLo
		_, err := NewCatalog([]ConductorSpec{bad}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resistance must increase")
	})
}

func TestCatalogLookups(t *testing.T) {
	catalog, err := NewCatalog(
		[]ConductorSpec{{
			Name: "ORIOLE", DiameterIn: 0.741,
			TLoC: 25, RLo: 0.2850 / 5280,
			THiC: 50, RHi: 0.3110 / 5280,
		}},
		[]StaticRating{{
			Conductor: "ORIOLE", MOTC: 75, Amps: 531,
			MVAByKV: map[int]float64{69: 63, 138: 127},
		}},
	)
	require.NoError(t, err)

	t.Run("unknown conductor", func(t *testing.T) {
		_, err := catalog.Spec("UNOBTAINIUM")
		require.ErrorIs(t, err, ErrUnknownConductor)
	})

	t.Run("rating by conductor and MOT", func(t *testing.T) {
		r, err := catalog.Rating("ORIOLE", 75)
		require.NoError(t, err)
		assert.Equal(t, 531.0, r.Amps)
	})

	t.Run("no rating row for MOT", func(t *testing.T) {
		_, err := catalog.Rating("ORIOLE", 100)
		require.ErrorIs(t, err, ErrNoRating)
	})

	t.Run("rated MVA by voltage class", func(t *testing.T) {
		mva, err := catalog.RatedMVA("ORIOLE", 75, 69)
		require.NoError(t, err)
		assert.Equal(t, 63.0, mva)
	})

	t.Run("no column for voltage class", func(t *testing.T) {
		_, err := catalog.RatedMVA("ORIOLE", 75, 230)
		require.ErrorIs(t, err, ErrNoRating)
		assert.Contains(t, err.Error(), "230 kV")
	})
}
