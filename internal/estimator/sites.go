package estimator

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jlammi/troutpop-go/internal/errors"
	"github.com/jlammi/troutpop-go/internal/removal"
	"github.com/jlammi/troutpop-go/internal/survey"
)

// SiteEstimate is the per-site abundance estimate M_hat and its sampling
// variance V_M_hat, positionally aligned with the canonical site order.
type SiteEstimate struct {
	SiteID string
	MHat   float64
	VMHat  float64
}

// StdErr returns the standard error of the site abundance estimate.
func (se SiteEstimate) StdErr() float64 {
	if se.VMHat <= 0 {
		return 0
	}
	// VMHat is a squared standard error by construction.
	return math.Sqrt(se.VMHat)
}

// FitOptions controls per-site model fitting.
type FitOptions struct {
	// Workers bounds concurrent fits; values below 2 fit sequentially.
	Workers int
	// SkipUnfittable drops sites the model cannot fit instead of aborting.
	// Dropping shrinks n and biases the regional estimate; every drop is
	// logged as a warning.
	SkipUnfittable bool
	// Progress, when set, is called after each site completes.
	Progress func(done, total int)
}

// FitSites runs the removal model over every site in canonical order and
// returns one estimate per site. A site whose catches are all zero is never
// sent to the model: its abundance and variance are zero by definition.
// Results are written into per-site slots, so the output order is identical
// whether fitting runs sequentially or in parallel.
func FitSites(ctx context.Context, sites []survey.SiteData, model removal.Model, opts FitOptions) ([]SiteEstimate, error) {
	results := make([]SiteEstimate, len(sites))
	failed := make([]error, len(sites))

	g, ctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	var done atomic.Int64
	for i := range sites {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			est, err := fitOne(sites[i], model)
			switch {
			case err != nil && !opts.SkipUnfittable:
				return err
			case err != nil:
				failed[i] = err
			default:
				results[i] = est
			}
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(sites))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !opts.SkipUnfittable {
		return results, nil
	}

	kept := results[:0]
	for i := range results {
		if failed[i] != nil {
			slog.Warn("dropping unfittable site, regional estimate is biased low",
				"site_id", sites[i].Site.ID,
				"catches", sites[i].Catches,
				"error", failed[i])
			continue
		}
		kept = append(kept, results[i])
	}
	return kept, nil
}

// fitOne estimates abundance for a single site. The all-zero catch vector
// is a defined survey outcome, not a model failure: no fish were present to
// deplete, so both the estimate and its variance are exactly zero.
func fitOne(site survey.SiteData, model removal.Model) (SiteEstimate, error) {
	est := SiteEstimate{SiteID: site.Site.ID}
	if site.TotalCatch() == 0 {
		return est, nil
	}

	fit, err := model.Fit(site.Catches)
	if err != nil {
		return SiteEstimate{}, errors.Wrap(err).
			Component("estimator").
			Category(errors.CategoryDegenerateSite).
			SiteContext(site.Site.ID).
			Build()
	}
	est.MHat = fit.Estimate
	est.VMHat = fit.StdErr * fit.StdErr
	return est, nil
}

// Vectors splits site estimates into the positional M_hat and V_M_hat
// slices the ratio estimators consume.
func Vectors(ests []SiteEstimate) (mhat, vmhat []float64) {
	mhat = make([]float64, len(ests))
	vmhat = make([]float64, len(ests))
	for i, e := range ests {
		mhat[i] = e.MHat
		vmhat[i] = e.VMHat
	}
	return mhat, vmhat
}
