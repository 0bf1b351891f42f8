// Package survey holds the in-memory model of one depletion survey: the
// sample frame, the visited sites and the raw pass and fish tables, plus
// the aggregation that turns them into per-site catch vectors and size
// class tallies for the estimators.
package survey

import (
	"sort"
	"strings"
)

// Frame describes the sampling frame the sites were drawn from.
type Frame struct {
	Reaches     int     // N, number of short reaches in the frame
	TotalLength float64 // total frame length in meters
}

// MeanReachLength returns L1_bar, the mean reach length in meters.
func (f Frame) MeanReachLength() float64 {
	if f.Reaches == 0 {
		return 0
	}
	return f.TotalLength / float64(f.Reaches)
}

// Site is one visited reach. Dry sites carry no pass or fish rows and only
// contribute to the wet fraction.
type Site struct {
	ID  string
	L2  float64 // wetted channel length between block nets, meters
	Wet bool
}

// PassRecord is one removal pass at a site. Pass numbers are 1-based and
// contiguous within a site; order is significant for the removal model.
type PassRecord struct {
	SiteID string
	Pass   int
	Catch  int
	L2     float64 // wetted length carried on the row, must agree across the site
}

// FishRecord is one handled fish, used only for size classification.
type FishRecord struct {
	SiteID     string
	Pass       int
	ForkLength float64 // fork length, mm
}

// Dataset is the read-only survey input for one analysis run. Sites are in
// canonical order (ascending ID); every per-site slice downstream is
// positionally aligned to WetSites().
type Dataset struct {
	Frame  Frame
	Sites  []Site
	Passes []PassRecord
	Fish   []FishRecord
}

// normalize sorts the tables into canonical order: sites ascending by ID,
// passes and fish by (site, pass). Called once by the loader; estimators
// rely on this order for reproducible summation.
func (ds *Dataset) normalize() {
	sort.Slice(ds.Sites, func(i, j int) bool {
		return ds.Sites[i].ID < ds.Sites[j].ID
	})
	sort.Slice(ds.Passes, func(i, j int) bool {
		if ds.Passes[i].SiteID != ds.Passes[j].SiteID {
			return ds.Passes[i].SiteID < ds.Passes[j].SiteID
		}
		return ds.Passes[i].Pass < ds.Passes[j].Pass
	})
	sort.Slice(ds.Fish, func(i, j int) bool {
		if ds.Fish[i].SiteID != ds.Fish[j].SiteID {
			return ds.Fish[i].SiteID < ds.Fish[j].SiteID
		}
		return ds.Fish[i].Pass < ds.Fish[j].Pass
	})
}

// WetSites returns the sites that carried water on the survey date, in
// canonical order. These are the sites with catch data; their count is the
// estimator sample size n.
func (ds *Dataset) WetSites() []Site {
	wet := make([]Site, 0, len(ds.Sites))
	for _, s := range ds.Sites {
		if s.Wet {
			wet = append(wet, s)
		}
	}
	return wet
}

// WetFraction returns fw, the fraction of visited sites that were wet.
// The regional estimators use it to scale the frame down to its flowing
// subset; a configured override takes precedence over this derivation.
func (ds *Dataset) WetFraction() float64 {
	if len(ds.Sites) == 0 {
		return 0
	}
	wet := 0
	for _, s := range ds.Sites {
		if s.Wet {
			wet++
		}
	}
	return float64(wet) / float64(len(ds.Sites))
}

// site returns the canonical record for id, if present.
func (ds *Dataset) site(id string) (Site, bool) {
	// Sites are sorted by ID after normalize.
	i := sort.Search(len(ds.Sites), func(i int) bool { return ds.Sites[i].ID >= id })
	if i < len(ds.Sites) && ds.Sites[i].ID == id {
		return ds.Sites[i], true
	}
	return Site{}, false
}

// Class is a fish size class derived from fork length.
type Class int

const (
	ClassAdult Class = iota
	ClassEnigmatic
	ClassJuvenile
)

// Classes lists the size classes in report order.
var Classes = []Class{ClassAdult, ClassEnigmatic, ClassJuvenile}

func (c Class) String() string {
	switch c {
	case ClassAdult:
		return "adult"
	case ClassEnigmatic:
		return "enigmatic"
	case ClassJuvenile:
		return "juvenile"
	default:
		return "unknown"
	}
}

// Title returns the class name capitalized for table headings.
func (c Class) Title() string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SizeClasses holds the fork length thresholds partitioning handled fish.
// A fish strictly below JuvenileBelow is a juvenile, strictly above
// AdultAbove an adult, and enigmatic in between (both bounds inclusive).
type SizeClasses struct {
	JuvenileBelow float64 // mm
	AdultAbove    float64 // mm
}

// DefaultSizeClasses are the survey protocol thresholds.
var DefaultSizeClasses = SizeClasses{JuvenileBelow: 150, AdultAbove: 200}

// Classify assigns a fork length to its size class.
func (sc SizeClasses) Classify(forkLength float64) Class {
	switch {
	case forkLength < sc.JuvenileBelow:
		return ClassJuvenile
	case forkLength > sc.AdultAbove:
		return ClassAdult
	default:
		return ClassEnigmatic
	}
}

// Tally is the per-site handled fish count by size class. The classes
// partition the handled count exactly: Handled = Adult + Enigmatic + Juvenile.
type Tally struct {
	Handled   int // m, all measured fish at the site
	Adult     int
	Enigmatic int
	Juvenile  int
}

// Count returns the tally for one class.
func (t Tally) Count(c Class) int {
	switch c {
	case ClassAdult:
		return t.Adult
	case ClassEnigmatic:
		return t.Enigmatic
	case ClassJuvenile:
		return t.Juvenile
	default:
		return 0
	}
}
