package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

var minorPerMajor = decimal.NewFromInt(100)

// ToMinorUnits prices hours at rate and rounds to whole cents, half away from zero.
// It is the only place an amount is rounded.
func ToMinorUnits(hours, rate float64) int64 {
	amount := decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(rate)).Mul(minorPerMajor)
	return amount.Round(0).IntPart()
}

// FromMinorUnits converts cents back to major units.
func FromMinorUnits(minor int64) float64 {
	f, _ := decimal.New(minor, -2).Float64()
	return f
}

// Hours converts a duration to fractional hours without rounding.
func Hours(ms int64) float64 {
	return float64(ms) / float64(time.Hour.Milliseconds())
}
