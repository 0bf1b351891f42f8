package estimator

import (
	"math"

	"github.com/jlammi/troutpop-go/internal/errors"
)

// Basis captures the intermediates of one composite-ratio fit that the power
// projector holds fixed while inflating the sample size: the point estimates
// and per-site means stay those of the real sample, only the ratio variance
// and the finite population correction rescale.
type Basis struct {
	SampleSize int     // n of the original fit
	WetReaches float64 // Nw = N*fw
	Expansion  float64 // Nw * L1_bar, density-to-total scale
	DHat       float64
	THat       float64
	L2Bar      float64
	MBar       float64
	VSite      float64
	SumSq      float64 // sum((M_i*x_i - D*L2_i*m_i)^2) over the original sites
}

// PowerRow is one line of the precision projection table: the coefficient of
// variation the survey would reach if the sample were replicated to
// SampleSize sites. Err is set when the projection is undefined for this
// multiplier; the other rows are unaffected.
type PowerRow struct {
	Multiplier int
	SampleSize int
	CV         float64
	Err        error
}

// Project recomputes the composite-ratio variance under i-fold replication
// of the sample for each multiplier, in caller order. Replication repeats
// the existing per-site values, so the squared-deviation sum scales by i
// while the divisor grows to i*n-1 and the finite population correction
// tightens. A multiplier that pushes the sample past the wetted frame
// (i*n >= Nw) yields a row with Err set instead of a non-finite CV.
func Project(b Basis, multipliers []int) []PowerRow {
	rows := make([]PowerRow, 0, len(multipliers))
	for _, mult := range multipliers {
		rows = append(rows, projectOne(b, mult))
	}
	return rows
}

func projectOne(b Basis, mult int) PowerRow {
	row := PowerRow{Multiplier: mult, SampleSize: mult * b.SampleSize}
	if mult < 1 {
		row.Err = errors.Newf("estimator: power multiplier must be at least 1, got %d", mult).
			Component("estimator").
			Category(errors.CategoryValidation).
			Build()
		return row
	}

	if b.THat == 0 {
		row.Err = errors.Newf("estimator: CV projection undefined for a zero estimate").
			Component("estimator").
			Category(errors.CategoryNonFiniteResult).
			Build()
		return row
	}

	in := float64(row.SampleSize)
	if in >= b.WetReaches {
		row.Err = errors.Wrap(ErrFrameExhausted).
			Component("estimator").
			Category(errors.CategoryNonFiniteResult).
			Context("multiplier", mult).
			Context("projected_sites", row.SampleSize).
			Context("wet_reaches", b.WetReaches).
			Build()
		return row
	}

	vRatio := float64(mult) * b.SumSq / (in - 1)
	scale := b.L2Bar * b.MBar
	vD := (vRatio*((b.WetReaches-in)/(in*b.WetReaches)) + b.VSite/b.WetReaches) / (scale * scale)
	vT := vD * b.Expansion * b.Expansion

	row.CV = 100 * math.Sqrt(vT) / b.THat
	return row
}
