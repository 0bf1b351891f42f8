package removal

import (
	"math"

	"github.com/jlammi/troutpop-go/internal/errors"
)

// Zippin is the classic maximum likelihood removal estimator (Zippin 1956).
// Unlike Carle-Strub it has no weighting toward plausible capture
// probabilities, so it refuses catch patterns that do not deplete: the mean
// removal pass R must stay below (k-1)/2 for the likelihood to have a
// maximum. For two passes the estimate reduces to the Seber-LeCren closed
// form N = C1^2 / (C1 - C2).
type Zippin struct{}

// NewZippin returns the maximum likelihood removal estimator.
func NewZippin() *Zippin { return &Zippin{} }

func (z *Zippin) Name() string { return "zippin" }

// Fit solves the Zippin likelihood equation for the per-pass retention
// probability q and converts it to an abundance estimate with the
// large-sample variance.
func (z *Zippin) Fit(catches []int) (Fit, error) {
	total, _, err := checkCatches(catches)
	if err != nil {
		return Fit{}, err
	}

	k := len(catches)
	kf, tf := float64(k), float64(total)

	// R is the zero-based mean pass of removal. The likelihood has a
	// maximum only while R < (k-1)/2, i.e. catches concentrate early.
	r := 0.0
	for i, c := range catches {
		r += float64(i) * float64(c)
	}
	r /= tf
	if r >= (kf-1)/2 {
		return Fit{}, fitError(ErrNotDepleting, catches)
	}

	// Solve R = q/p - k q^k / (1 - q^k) for q in (0,1). The right side is
	// monotone increasing from 0 to (k-1)/2, so bisection is safe.
	q := bisect(func(q float64) float64 {
		qk := math.Pow(q, kf)
		return q/(1-q) - kf*qk/(1-qk) - r
	})
	p := 1 - q

	n := tf / (1 - math.Pow(q, kf))
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Fit{}, fitError(ErrNotDepleting, catches)
	}

	se, err := zippinStdErr(n, p, k)
	if err != nil {
		return Fit{}, errors.Wrap(err).
			Component("removal").
			Category(errors.CategoryModelFit).
			Context("catches", catches).
			Build()
	}

	return Fit{
		Estimate:    n,
		StdErr:      se,
		CaptureProb: p,
		Passes:      k,
		TotalCatch:  total,
	}, nil
}

// bisect finds the root of a monotone increasing f on the open interval
// (0,1) to near machine precision.
func bisect(f func(float64) float64) float64 {
	lo, hi := 1e-12, 1-1e-12
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1e-14 {
			break
		}
	}
	return (lo + hi) / 2
}
