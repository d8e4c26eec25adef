package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		precision uint
		want      float64
	}{
		{"rounds down", 3.14159, 2, 3.14},
		{"rounds up", 3.146, 2, 3.15},
		{"half rounds away from zero", 2.5, 0, 3},
		{"negative half rounds away from zero", -2.5, 0, -3},
		{"exact value unchanged", 2920.00, 2, 2920.00},
		{"repeating fraction", 1.0 / 3.0, 2, 0.33},
		{"zero", 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundFloat(tt.value, tt.precision))
		})
	}
}

func TestMinInt(t *testing.T) {
	assert.Equal(t, 1, MinInt(1, 2))
	assert.Equal(t, -2, MinInt(-2, 1))
	assert.Equal(t, 3, MinInt(3, 3))
}
