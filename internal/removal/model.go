// Package removal implements depletion (removal) abundance estimators for
// closed-population multi-pass electrofishing data. A Model maps an ordered
// per-pass catch vector to a point estimate of site abundance and its
// standard error, or to a fit error when the catch pattern is inconsistent
// with depletion. Implementations are substitutable behind the Model
// interface so the regional estimators never depend on a particular method.
package removal

import (
	"github.com/jlammi/troutpop-go/internal/errors"
)

// Fit is the result of fitting a removal model to one site's catch vector.
type Fit struct {
	Estimate    float64 // N_hat, estimated abundance in the enclosed reach
	StdErr      float64 // standard error of N_hat
	CaptureProb float64 // p_hat, per-pass capture probability
	Passes      int     // k, number of removal passes
	TotalCatch  int     // T, total fish removed over all passes
}

// Model estimates site abundance from an ordered sequence of per-pass
// catches. Order is significant: depletion models expect catches to decline
// as the population is removed. Fit returns an error when the model cannot
// be fit; callers handle the all-zero catch case themselves and must not
// pass it in.
type Model interface {
	// Name identifies the method in logs and report headers.
	Name() string
	// Fit estimates abundance from catches, one count per pass in pass order.
	Fit(catches []int) (Fit, error)
}

// Sentinel fit errors, matched by callers with errors.Is.
var (
	ErrTooFewPasses  = errors.NewStd("removal: at least two passes are required")
	ErrNegativeCatch = errors.NewStd("removal: negative catch count")
	ErrNoCatch       = errors.NewStd("removal: all-zero catch vector has no removal information")
	ErrNotDepleting  = errors.NewStd("removal: catch pattern inconsistent with depletion")
	ErrUnstableFit   = errors.NewStd("removal: fit did not produce a finite variance")
)

// checkCatches applies the guards shared by all models and returns the total
// catch T and the weighted cumulative removal X = sum((k-i)*C_i, i 1-based).
func checkCatches(catches []int) (total, weighted int, err error) {
	k := len(catches)
	if k < 2 {
		return 0, 0, fitError(ErrTooFewPasses, catches)
	}
	for i, c := range catches {
		if c < 0 {
			return 0, 0, fitError(ErrNegativeCatch, catches)
		}
		total += c
		weighted += (k - i - 1) * c
	}
	if total == 0 {
		return 0, 0, fitError(ErrNoCatch, catches)
	}
	return total, weighted, nil
}

func fitError(sentinel error, catches []int) error {
	return errors.Wrap(sentinel).
		Component("removal").
		Category(errors.CategoryModelFit).
		Context("catches", catches).
		Build()
}
