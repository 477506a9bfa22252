package calculator

import (
	"math"
	"testing"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.004, 1},
		{1.005, 1},
		{2.675, 2.67},
		{-1.005, -1},
		{0.025, 0.03},
		{-0.025, -0.02},
		{-0.004, 0},
		{33.333333333, 33.33},
		{-66.666666666, -66.67},
		{1254.84, 1254.84},
	}

	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoundCents_NonFinite(t *testing.T) {
	if got := RoundCents(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("RoundCents(+Inf) = %v", got)
	}
	if got := RoundCents(math.NaN()); !math.IsNaN(got) {
		t.Errorf("RoundCents(NaN) = %v", got)
	}
}
