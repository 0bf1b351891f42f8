// Package analysis runs the whole estimation pipeline as one batch: load
// the survey tables, validate them, fit the removal model per site, apply
// the regional ratio estimators per target quantity and project precision
// against larger sample sizes. The four regional targets are computed
// independently so a failure in one (say, no enigmatic fish handled) never
// suppresses the others.
package analysis

import (
	"context"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/google/uuid"

	"github.com/jlammi/troutpop-go/internal/buildinfo"
	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/errors"
	"github.com/jlammi/troutpop-go/internal/estimator"
	"github.com/jlammi/troutpop-go/internal/removal"
	"github.com/jlammi/troutpop-go/internal/survey"
)

// ClassResult is the regional total estimate for one size class, or the
// reason it could not be computed.
type ClassResult struct {
	Class    survey.Class
	Estimate estimator.Estimate
	Err      error
}

// LengthSummary describes the fork length distribution of one size class
// across the whole sample.
type LengthSummary struct {
	Class  survey.Class
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Results is everything one run produces, stamped with enough metadata to
// reproduce it.
type Results struct {
	RunID       string
	StartedAt   time.Time
	Version     string
	ProgramName string

	Frame       survey.Frame
	WetFraction float64
	SampleSize  int
	Model       string
	Confidence  float64

	Sites         []survey.SiteData
	SiteEstimates []estimator.SiteEstimate

	Density    estimator.Estimate
	DensityErr error
	Classes    []ClassResult

	Power    []estimator.PowerRow
	PowerErr error

	Lengths []LengthSummary
}

// Options carries per-invocation knobs that do not belong in configuration.
type Options struct {
	// Progress is called after each site fit, for progress display.
	Progress func(done, total int)
}

// Run executes the full pipeline for the configured input tables.
func Run(ctx context.Context, settings *conf.Settings, opts Options) (*Results, error) {
	log := getLogger(settings)

	ds, err := LoadAndValidate(settings)
	if err != nil {
		return nil, err
	}

	results := &Results{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now(),
		Version:     buildinfo.Version,
		ProgramName: settings.Main.Name,
		Frame:       ds.Frame,
		Model:       settings.Removal.Method,
		Confidence:  settings.Estimate.Confidence,
	}

	results.WetFraction = settings.Frame.WetFraction
	if results.WetFraction == 0 {
		results.WetFraction = ds.WetFraction()
	}

	sizeClasses := survey.SizeClasses{
		JuvenileBelow: settings.SizeClass.JuvenileBelow,
		AdultAbove:    settings.SizeClass.AdultAbove,
	}
	results.Sites = survey.Aggregate(ds, sizeClasses)

	log.Info("fitting removal model",
		"run_id", results.RunID,
		"model", settings.Removal.Method,
		"sites", len(results.Sites),
		"wet_fraction", results.WetFraction)

	model := buildModel(settings)
	ests, err := estimator.FitSites(ctx, results.Sites, model, estimator.FitOptions{
		Workers:        settings.Removal.Workers,
		SkipUnfittable: settings.Removal.OnFitFailure == conf.FitFailureSkip,
		Progress:       opts.Progress,
	})
	if err != nil {
		return nil, err
	}
	results.SiteEstimates = ests
	results.SampleSize = len(ests)

	if len(ests) < len(results.Sites) {
		// Sites were dropped under the skip policy; the per-site vectors
		// must stay aligned, so the dropped sites leave every vector.
		results.Sites = keepFitted(results.Sites, ests)
	}

	estimate(results, settings)
	results.Lengths = summarizeLengths(ds, sizeClasses)

	log.Info("run complete",
		"run_id", results.RunID,
		"sample_size", results.SampleSize,
		"density_ok", results.DensityErr == nil)
	return results, nil
}

// LoadAndValidate reads the configured tables and applies every integrity
// rule, joining all findings into one error. The validate command calls
// survey.Validate directly to list findings individually; the analyze and
// power pipelines go through here and abort on the first bad dataset.
func LoadAndValidate(settings *conf.Settings) (*survey.Dataset, error) {
	if err := checkInputs(settings); err != nil {
		return nil, err
	}

	frame := survey.Frame{
		Reaches:     settings.Frame.Reaches,
		TotalLength: settings.Frame.TotalLength,
	}
	ds, err := survey.LoadDataset(frame,
		settings.Input.PassTable, settings.Input.FishTable, settings.Input.SiteTable)
	if err != nil {
		return nil, err
	}

	if findings := survey.Validate(ds); len(findings) > 0 {
		return nil, errors.Newf("survey tables failed %d integrity checks: %w",
			len(findings), errors.Join(findings...)).
			Component("analysis").
			Category(errors.CategoryInputIntegrity).
			Build()
	}
	return ds, nil
}

// estimate runs the four regional targets, each isolated from the others,
// then the power projection on the adult class.
func estimate(results *Results, settings *conf.Settings) {
	mhat, vmhat := estimator.Vectors(results.SiteEstimates)
	l2 := survey.Lengths(results.Sites)
	fr := estimator.Frame{
		Reaches:         settings.Frame.Reaches,
		WetFraction:     results.WetFraction,
		MeanReachLength: results.Frame.MeanReachLength(),
	}
	confidence := settings.Estimate.Confidence

	results.Density, results.DensityErr = estimator.Density(mhat, vmhat, l2, fr, confidence)

	var adultBasis estimator.Basis
	var adultErr error
	for _, class := range survey.Classes {
		x, m := survey.ClassCounts(results.Sites, class)
		est, basis, err := estimator.ClassTotal(x, m, mhat, vmhat, l2, fr, confidence)
		if err != nil {
			err = errors.Wrap(err).
				Component("analysis").
				Category(errors.CategoryOf(err)).
				TargetContext(class.String()).
				Build()
		}
		results.Classes = append(results.Classes, ClassResult{Class: class, Estimate: est, Err: err})
		if class == survey.ClassAdult {
			adultBasis, adultErr = basis, err
		}
	}

	// The precision projection extends the adult estimate, the management
	// quantity the survey is sized for.
	if adultErr != nil {
		results.PowerErr = adultErr
		return
	}
	results.Power = estimator.Project(adultBasis, settings.Estimate.Multipliers)
}

func buildModel(settings *conf.Settings) removal.Model {
	var model removal.Model
	switch settings.Removal.Method {
	case conf.MethodZippin:
		model = removal.NewZippin()
	default:
		model = removal.NewCarleStrub()
	}
	if settings.Removal.Cache {
		model = removal.Cached(model)
	}
	return model
}

func checkInputs(settings *conf.Settings) error {
	missing := func(what string) error {
		return errors.Newf("%s is required, set it in config.yaml or with flags", what).
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}
	switch {
	case settings.Input.PassTable == "":
		return missing("input.passtable")
	case settings.Input.FishTable == "":
		return missing("input.fishtable")
	case settings.Frame.Reaches <= 0:
		return missing("frame.reaches")
	case settings.Frame.TotalLength <= 0:
		return missing("frame.totallength")
	}
	return nil
}

// keepFitted filters the site slice down to the sites that produced an
// estimate, preserving canonical order.
func keepFitted(sites []survey.SiteData, ests []estimator.SiteEstimate) []survey.SiteData {
	fitted := make(map[string]bool, len(ests))
	for _, e := range ests {
		fitted[e.SiteID] = true
	}
	kept := make([]survey.SiteData, 0, len(ests))
	for _, sd := range sites {
		if fitted[sd.Site.ID] {
			kept = append(kept, sd)
		}
	}
	return kept
}

func summarizeLengths(ds *survey.Dataset, sc survey.SizeClasses) []LengthSummary {
	byClass := survey.ForkLengths(ds, sc)
	summaries := make([]LengthSummary, 0, len(survey.Classes))
	for _, class := range survey.Classes {
		lengths := byClass[class]
		summary := LengthSummary{Class: class, Count: len(lengths)}
		if len(lengths) > 0 {
			sample := (&stats.Sample{Xs: lengths}).Sort()
			summary.Mean = sample.Mean()
			summary.Median = sample.Quantile(0.5)
			summary.Min, summary.Max = sample.Bounds()
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
