package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEWMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		alpha  float64
		want   float64
	}{
		{"empty", nil, 0.6, 0},
		{"single", []float64{12}, 0.6, 12},
		{"three ascending", []float64{10, 20, 30}, 0.6, 24.4},
		{"constant", []float64{8, 8, 8, 8}, 0.6, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EWMA(tt.values, tt.alpha), 1e-9)
		})
	}
}

func TestEWMAIsOrderSensitive(t *testing.T) {
	asc := EWMA([]float64{10, 20, 30}, ewmaAlpha)
	desc := EWMA([]float64{30, 20, 10}, ewmaAlpha)

	assert.InDelta(t, 24.4, asc, 1e-9)
	assert.Greater(t, asc, desc, "recent games must dominate the estimate")
}
