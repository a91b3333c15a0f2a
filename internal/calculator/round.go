package calculator

import "github.com/shopspring/decimal"

// tolerance is the absolute reconciliation tolerance for monetary sums.
const tolerance = 0.01

// Round2 rounds a monetary value to 2 decimals, half away from zero.
// Amounts travel as float64 for compatibility with the stored history;
// rounding goes through decimal so ties behave like 0.125 -> 0.13, not
// whatever the nearest binary float happens to be.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
