package estimator

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// studentTQuantile returns the p-quantile of Student's t distribution with
// df degrees of freedom. moremath exposes only the CDF, which is strictly
// increasing, so the quantile is recovered by bracketing and bisection;
// the result is accurate to well below the 1e-9 tolerance the regional
// estimates are compared at.
func studentTQuantile(p float64, df int) float64 {
	if p <= 0 || p >= 1 {
		return math.NaN()
	}
	dist := stats.TDist{V: float64(df)}

	// Expand the bracket until it encloses the quantile. Heavy t tails at
	// low df keep this loop short in practice but never unbounded.
	lo, hi := -2.0, 2.0
	for dist.CDF(lo) > p {
		lo *= 2
	}
	for dist.CDF(hi) < p {
		hi *= 2
	}

	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if dist.CDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1e-13 {
			break
		}
	}
	return (lo + hi) / 2
}
