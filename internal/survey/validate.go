package survey

import (
	"github.com/jlammi/troutpop-go/internal/errors"
)

// Validate checks the cross-table integrity rules and returns every finding
// rather than stopping at the first, so a survey crew can fix a data sheet
// in one round. An empty slice means the dataset is fit for estimation.
// The dataset must be normalized (as LoadDataset leaves it).
func Validate(ds *Dataset) []error {
	var findings []error
	report := func(category errors.ErrorCategory, siteID, format string, args ...any) {
		eb := errors.Newf(format, args...).
			Component("survey").
			Category(category)
		if siteID != "" {
			eb.SiteContext(siteID)
		}
		findings = append(findings, eb.Build())
	}

	if ds.Frame.Reaches <= 0 {
		report(errors.CategoryInputIntegrity, "", "frame has %d reaches, need a positive count", ds.Frame.Reaches)
	}
	if ds.Frame.TotalLength <= 0 {
		report(errors.CategoryInputIntegrity, "", "frame total length %g must be positive", ds.Frame.TotalLength)
	}

	seen := make(map[string]bool, len(ds.Sites))
	for _, s := range ds.Sites {
		if seen[s.ID] {
			report(errors.CategoryInputIntegrity, s.ID, "site %q appears twice in the site table", s.ID)
		}
		seen[s.ID] = true
		if s.Wet && s.L2 <= 0 {
			report(errors.CategoryInputIntegrity, s.ID, "site %q has non-positive sampled length %g", s.ID, s.L2)
		}
	}

	// Pass rows are sorted by (site, pass); walk runs per site checking
	// 1-based contiguity and per-row consistency.
	maxPass := make(map[string]int, len(ds.Sites))
	for i, p := range ds.Passes {
		site, known := ds.site(p.SiteID)
		switch {
		case !known:
			report(errors.CategoryInputIntegrity, p.SiteID, "pass row references unknown site %q", p.SiteID)
		case !site.Wet:
			report(errors.CategoryInputIntegrity, p.SiteID, "pass row for site %q, which the site table marks dry", p.SiteID)
		case p.L2 != site.L2:
			report(errors.CategoryInputIntegrity, p.SiteID,
				"site %q sampled length disagrees between tables: %g vs %g", p.SiteID, p.L2, site.L2)
		}

		if p.Catch < 0 {
			report(errors.CategoryInputIntegrity, p.SiteID, "site %q pass %d has negative catch %d", p.SiteID, p.Pass, p.Catch)
		}

		firstOfSite := i == 0 || ds.Passes[i-1].SiteID != p.SiteID
		switch {
		case firstOfSite && p.Pass != 1:
			report(errors.CategoryInputIntegrity, p.SiteID, "site %q passes start at %d, not 1", p.SiteID, p.Pass)
		case !firstOfSite && p.Pass == ds.Passes[i-1].Pass:
			report(errors.CategoryInputIntegrity, p.SiteID, "site %q has duplicate pass %d", p.SiteID, p.Pass)
		case !firstOfSite && p.Pass != ds.Passes[i-1].Pass+1:
			report(errors.CategoryInputIntegrity, p.SiteID,
				"site %q passes jump from %d to %d", p.SiteID, ds.Passes[i-1].Pass, p.Pass)
		}
		if p.Pass > maxPass[p.SiteID] {
			maxPass[p.SiteID] = p.Pass
		}
	}

	for _, f := range ds.Fish {
		if _, known := ds.site(f.SiteID); !known {
			report(errors.CategoryInputIntegrity, f.SiteID, "fish row references unknown site %q", f.SiteID)
			continue
		}
		if f.Pass < 1 || f.Pass > maxPass[f.SiteID] {
			report(errors.CategoryInputIntegrity, f.SiteID,
				"fish recorded on pass %d of site %q, which ran %d passes", f.Pass, f.SiteID, maxPass[f.SiteID])
		}
		if f.ForkLength <= 0 {
			report(errors.CategoryInputIntegrity, f.SiteID,
				"fish at site %q pass %d has non-positive fork length %g", f.SiteID, f.Pass, f.ForkLength)
		}
	}

	return findings
}
