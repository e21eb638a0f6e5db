package graph

import "github.com/shopspring/decimal"

// Blend applies the exponential moving average alpha*prev + (1-alpha)*proposed, rounded to
// two decimals.
func Blend(prev, proposed decimal.Decimal, alpha float64) decimal.Decimal {
	a := decimal.NewFromFloat(alpha)
	return a.Mul(prev).Add(decimal.NewFromInt(1).Sub(a).Mul(proposed)).Round(2)
}

// Round2 rounds a weight to two decimals.
func Round2(w float64) float64 {
	return decimal.NewFromFloat(w).Round(2).InexactFloat64()
}
