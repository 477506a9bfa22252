package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// settleEpsilon is the dead zone around zero. Balances whose magnitude is
	// within it are considered settled.
	settleEpsilon = 0.009

	// sumTolerance is how far split parts may drift from their target total.
	sumTolerance = 0.01
)

// RoundCents rounds v to two decimal places, halves toward +Inf, on the
// binary value of v*100. So 1.005 (stored as 1.00499...) gives 1.00 and
// -0.025 gives -0.02. NaN and infinities are returned unchanged.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r := math.Floor(v*100+0.5) / 100
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// sumParts adds part values exactly, so that validation is not thrown off by
// binary floating point.
func sumParts(parts []Part) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(decimal.NewFromFloat(p.Value))
	}
	return sum
}

// withinTolerance reports whether |got-want| <= sumTolerance.
func withinTolerance(got decimal.Decimal, want float64) bool {
	return got.Sub(decimal.NewFromFloat(want)).Abs().LessThanOrEqual(decimal.NewFromFloat(sumTolerance))
}
