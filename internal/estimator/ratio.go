// Package estimator turns per-site removal estimates into regional density
// and abundance figures using the ratio estimators of the short-reach
// fisheries survey methodology: sums over sampled sites stand in for frame
// totals, with a finite population correction on the sampling variance and
// t-based confidence intervals. All functions are pure; each invocation
// computes its own intermediates so the per-class estimates stay independent.
package estimator

import (
	"math"

	"github.com/jlammi/troutpop-go/internal/errors"
)

// Frame carries the sample frame constants every regional estimate needs.
type Frame struct {
	Reaches         int     // N, short reaches in the frame
	WetFraction     float64 // fw, fraction of reaches carrying water
	MeanReachLength float64 // L1_bar in meters
}

// WetReaches returns N*fw, the effective frame size for wetted reaches.
func (f Frame) WetReaches() float64 {
	return float64(f.Reaches) * f.WetFraction
}

// Estimate is one immutable regional result. Point is a linear density
// (fish per meter) in density mode and a regional total in composite mode;
// Density holds the density intermediate in both.
type Estimate struct {
	Point      float64
	Density    float64
	Variance   float64
	StdErr     float64
	Lower      float64 // confidence bound; may be negative, reported as-is
	Upper      float64
	CV         float64 // percent; NaN when Point is zero
	SampleSize int
	Confidence float64
}

// Sentinel estimation errors.
var (
	ErrTooFewSites     = errors.NewStd("estimator: regional variance requires at least two sites")
	ErrNoSampledLength = errors.NewStd("estimator: total sampled channel length is zero")
	ErrNoHandledFish   = errors.NewStd("estimator: no handled fish across sites, class ratio undefined")
	ErrFrameExhausted  = errors.NewStd("estimator: sample size meets or exceeds the wetted frame")
)

// Density estimates the regional linear fish density D = sum(M)/sum(L2) and
// its sampling variance. mhat and vmhat are the per-site abundance estimates
// and variances, l2 the sampled channel lengths, all positionally aligned in
// canonical site order. The wetted frame must exceed the sample size, or the
// finite population correction turns negative and the variance is undefined.
func Density(mhat, vmhat, l2 []float64, fr Frame, confidence float64) (Estimate, error) {
	n := len(mhat)
	if err := checkVectors(n, len(vmhat), len(l2)); err != nil {
		return Estimate{}, err
	}
	if n < 2 {
		return Estimate{}, regionalError(ErrTooFewSites, errors.CategoryInsufficientSample, "density", n)
	}
	nw := fr.WetReaches()
	if nw <= float64(n) {
		return Estimate{}, regionalError(ErrFrameExhausted, errors.CategoryNonFiniteResult, "density", n)
	}

	sumM, sumL2 := 0.0, 0.0
	for i := 0; i < n; i++ {
		sumM += mhat[i]
		sumL2 += l2[i]
	}
	if sumL2 == 0 {
		return Estimate{}, regionalError(ErrNoSampledLength, errors.CategoryNonFiniteResult, "density", n)
	}

	dHat := sumM / sumL2

	vRatio := 0.0
	for i := 0; i < n; i++ {
		d := mhat[i] - dHat*l2[i]
		vRatio += d * d
	}
	vRatio /= float64(n - 1)

	vSite := meanOf(vmhat)
	l2Bar := sumL2 / float64(n)

	vD := (vRatio*((nw-float64(n))/(float64(n)*nw)) + vSite/nw) / (l2Bar * l2Bar)

	est := finish(dHat, vD, n, confidence)
	est.Density = dHat
	return est, nil
}

// ClassTotal estimates the regional total abundance of one size class as the
// product of the class's share of the catch and the overall density, scaled
// to the wetted frame: T = N*fw*L1_bar * (sum(x)*sum(M)) / (sum(m)*sum(L2)).
// x holds the per-site class counts and m the per-site total handled counts.
// The returned Basis carries the intermediates the power projector holds
// fixed when inflating the sample size.
func ClassTotal(x, m []int, mhat, vmhat, l2 []float64, fr Frame, confidence float64) (Estimate, Basis, error) {
	n := len(mhat)
	if err := checkVectors(n, len(vmhat), len(l2), len(x), len(m)); err != nil {
		return Estimate{}, Basis{}, err
	}
	if n < 2 {
		return Estimate{}, Basis{}, regionalError(ErrTooFewSites, errors.CategoryInsufficientSample, "class-total", n)
	}
	nw := fr.WetReaches()
	if nw <= float64(n) {
		return Estimate{}, Basis{}, regionalError(ErrFrameExhausted, errors.CategoryNonFiniteResult, "class-total", n)
	}

	sumX, sumM, sumHandled, sumL2 := 0.0, 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		sumX += float64(x[i])
		sumM += mhat[i]
		sumHandled += float64(m[i])
		sumL2 += l2[i]
	}
	if sumL2 == 0 {
		return Estimate{}, Basis{}, regionalError(ErrNoSampledLength, errors.CategoryNonFiniteResult, "class-total", n)
	}
	if sumHandled == 0 {
		return Estimate{}, Basis{}, regionalError(ErrNoHandledFish, errors.CategoryInsufficientSample, "class-total", n)
	}

	dHat := sumX * sumM / (sumHandled * sumL2)
	expansion := nw * fr.MeanReachLength
	tHat := expansion * dHat

	sumSq := 0.0
	for i := 0; i < n; i++ {
		d := mhat[i]*float64(x[i]) - dHat*l2[i]*float64(m[i])
		sumSq += d * d
	}
	vRatio := sumSq / float64(n-1)

	vSite := meanOf(vmhat)
	l2Bar := sumL2 / float64(n)
	mBar := sumHandled / float64(n)

	scale := l2Bar * mBar
	vD := (vRatio*((nw-float64(n))/(float64(n)*nw)) + vSite/nw) / (scale * scale)
	vT := vD * expansion * expansion

	est := finish(tHat, vT, n, confidence)
	est.Density = dHat

	basis := Basis{
		SampleSize: n,
		WetReaches: nw,
		Expansion:  expansion,
		DHat:       dHat,
		THat:       tHat,
		L2Bar:      l2Bar,
		MBar:       mBar,
		VSite:      vSite,
		SumSq:      sumSq,
	}
	return est, basis, nil
}

// finish derives the standard error, confidence interval and CV shared by
// both modes. The t interval can dip below zero for a non-negative quantity;
// that is a known artifact of the approximation and is reported unclipped.
func finish(point, variance float64, n int, confidence float64) Estimate {
	se := math.Sqrt(variance)
	alpha := 1 - confidence
	tLow := studentTQuantile(alpha/2, n-1)
	tHigh := studentTQuantile(1-alpha/2, n-1)

	cv := math.NaN()
	if point != 0 {
		cv = 100 * se / point
	}

	return Estimate{
		Point:      point,
		Variance:   variance,
		StdErr:     se,
		Lower:      point + se*tLow,
		Upper:      point + se*tHigh,
		CV:         cv,
		SampleSize: n,
		Confidence: confidence,
	}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func checkVectors(n int, others ...int) error {
	for _, m := range others {
		if m != n {
			return errors.Newf("estimator: per-site vectors disagree in length (%d vs %d)", n, m).
				Component("estimator").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return nil
}

func regionalError(sentinel error, category errors.ErrorCategory, target string, n int) error {
	return errors.Wrap(sentinel).
		Component("estimator").
		Category(category).
		TargetContext(target).
		Context("sites", n).
		Build()
}
