package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name             string
		load, rated, dyn float64
		atRisk, overcap  bool
		loadPct          float64
	}{
		{"comfortable line", 30, 63, 70, true, false, 30.0 / 63},
		{"derated below nameplate", 30, 63, 55, false, false, 30.0 / 63},
		{"overloaded against nameplate", 70, 63, 80, true, true, 70.0 / 63},
		{"load exactly at nameplate", 63, 63, 60, false, false, 1.0},
		{"dynamic exactly at nameplate", 40, 63, 63, false, false, 40.0 / 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ClassifyLine("L1", tt.load, tt.rated, tt.dyn)
			assert.Equal(t, tt.atRisk, s.AtRisk)
			assert.Equal(t, tt.overcap, s.Overcapacity)
			assert.InDelta(t, tt.loadPct, s.LoadPercent, 1e-12)
			assert.Equal(t, "L1", s.Line)
		})
	}
}

func TestStressLevel(t *testing.T) {
	tests := []struct {
		pct  float64
		want StressLevel
	}{
		{0.0, StressNominal},
		{0.59, StressNominal},
		{0.60, StressCaution},
		{0.89, StressCaution},
		{0.90, StressCritical},
		{0.99, StressCritical},
		{1.00, StressOverloaded},
		{1.35, StressOverloaded},
	}
	for _, tt := range tests {
		s := LineStress{LoadPercent: tt.pct}
		assert.Equal(t, tt.want, s.Level(), "load percent %g", tt.pct)
	}
}
