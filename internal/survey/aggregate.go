package survey

// SiteData is the aggregated input for one wet site: its dense per-pass
// catch vector and the size class tallies of the fish handled there.
type SiteData struct {
	Site    Site
	Catches []int // indexed by pass number - 1; gaps are zero-filled
	Tally   Tally
}

// TotalCatch returns the fish removed over all passes at the site.
func (sd SiteData) TotalCatch() int {
	total := 0
	for _, c := range sd.Catches {
		total += c
	}
	return total
}

// Aggregate builds the per-site catch vectors and size class tallies for
// every wet site, in canonical order. A wet site without pass rows gets an
// empty catch vector and a site without fish rows an all-zero tally; neither
// is dropped, because the regional estimators need every sampled site
// present positionally. Call only on a validated dataset.
func Aggregate(ds *Dataset, sc SizeClasses) []SiteData {
	wet := ds.WetSites()
	index := make(map[string]int, len(wet))
	out := make([]SiteData, len(wet))
	for i, s := range wet {
		index[s.ID] = i
		out[i].Site = s
	}

	for _, p := range ds.Passes {
		i, ok := index[p.SiteID]
		if !ok {
			continue
		}
		for len(out[i].Catches) < p.Pass {
			out[i].Catches = append(out[i].Catches, 0)
		}
		out[i].Catches[p.Pass-1] = p.Catch
	}

	for _, f := range ds.Fish {
		i, ok := index[f.SiteID]
		if !ok {
			continue
		}
		out[i].Tally.Handled++
		switch sc.Classify(f.ForkLength) {
		case ClassAdult:
			out[i].Tally.Adult++
		case ClassEnigmatic:
			out[i].Tally.Enigmatic++
		case ClassJuvenile:
			out[i].Tally.Juvenile++
		}
	}

	return out
}

// ClassCounts returns the positional numerator vector x for one size class
// and the handled-count vector m, aligned with sites.
func ClassCounts(sites []SiteData, c Class) (x, m []int) {
	x = make([]int, len(sites))
	m = make([]int, len(sites))
	for i, sd := range sites {
		x[i] = sd.Tally.Count(c)
		m[i] = sd.Tally.Handled
	}
	return x, m
}

// Lengths returns the positional sampled channel length vector L2.
func Lengths(sites []SiteData) []float64 {
	l2 := make([]float64, len(sites))
	for i, sd := range sites {
		l2[i] = sd.Site.L2
	}
	return l2
}

// ForkLengths collects fork lengths per size class over the whole sample,
// for the length summary tables.
func ForkLengths(ds *Dataset, sc SizeClasses) map[Class][]float64 {
	out := make(map[Class][]float64, len(Classes))
	for _, f := range ds.Fish {
		c := sc.Classify(f.ForkLength)
		out[c] = append(out[c], f.ForkLength)
	}
	return out
}
