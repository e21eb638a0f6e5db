package graph

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

const sweepEpsilon = 1e-9

// MaxSweepLen bounds any sweep regardless of configured limits.
const MaxSweepLen = 1_000_000

var (
	ErrInvalidSweep  = errors.New("sweep requires step > 0 and stop > start")
	ErrSweepTooLarge = errors.New("sweep has too many samples")
)

// SweepLen is the number of samples in start..stop by step, inclusive. It allocates nothing
// and fails with ErrSweepTooLarge when the count is non-finite or above MaxSweepLen.
func SweepLen(start, stop, step float64) (int, error) {
	for _, v := range []float64{start, stop, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrInvalidSweep
		}
	}
	if step <= 0 || stop <= start {
		return 0, ErrInvalidSweep
	}
	n := math.Floor((stop-start)/step+sweepEpsilon) + 1
	if math.IsNaN(n) || math.IsInf(n, 0) || n > MaxSweepLen {
		return 0, ErrSweepTooLarge
	}
	return int(n), nil
}

// SweepWeights lists start + i*step for every sample SweepLen counts. Each value is rounded
// to ten decimals so float noise cannot leak into the tested weights.
func SweepWeights(start, stop, step float64) ([]float64, error) {
	n, err := SweepLen(start, stop, step)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = decimal.NewFromFloat(start + float64(i)*step).Round(10).InexactFloat64()
	}
	return out, nil
}
