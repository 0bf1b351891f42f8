package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/errors"
	"github.com/jlammi/troutpop-go/internal/survey"
)

const (
	testPassCSV = `site_id,length_between_nets,pass_number,catch_count
s1,50,1,12
s1,50,2,5
s1,50,3,2
s2,40,1,0
s2,40,2,0
s3,35,1,10
s3,35,2,4
s4,60,1,7
s4,60,2,3
`
	testFishCSV = `site_id,pass_number,fork_length_mm
s1,1,230
s1,1,120
s1,2,160
s1,2,210
s3,1,145
s3,1,250
s3,2,180
s4,1,95
s4,2,205
`
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()

	dir := t.TempDir()
	passPath := filepath.Join(dir, "passes.csv")
	fishPath := filepath.Join(dir, "fish.csv")
	require.NoError(t, os.WriteFile(passPath, []byte(testPassCSV), 0o644))
	require.NoError(t, os.WriteFile(fishPath, []byte(testFishCSV), 0o644))

	s := &conf.Settings{}
	s.Main.Name = "testwater"
	s.Frame.Reaches = 691
	s.Frame.TotalLength = 141000
	s.SizeClass.JuvenileBelow = 150
	s.SizeClass.AdultAbove = 200
	s.Removal.Method = conf.MethodCarleStrub
	s.Removal.Cache = true
	s.Removal.Workers = 1
	s.Removal.OnFitFailure = conf.FitFailureAbort
	s.Estimate.Confidence = 0.95
	s.Estimate.Multipliers = []int{1, 2, 3, 4}
	s.Input.PassTable = passPath
	s.Input.FishTable = fishPath
	s.Output.Format = conf.FormatTable
	return s
}

func TestRunProducesAllTargets(t *testing.T) {
	settings := testSettings(t)

	results, err := Run(context.Background(), settings, Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, results.RunID)
	assert.Equal(t, "testwater", results.ProgramName)
	assert.Equal(t, 4, results.SampleSize)
	assert.InDelta(t, 1.0, results.WetFraction, 1e-12)

	// Per-site estimates in canonical order; zero-catch s2 pinned to zero.
	require.Len(t, results.SiteEstimates, 4)
	assert.Equal(t, "s2", results.SiteEstimates[1].SiteID)
	assert.Zero(t, results.SiteEstimates[1].MHat)
	assert.Zero(t, results.SiteEstimates[1].VMHat)

	require.NoError(t, results.DensityErr)
	assert.Positive(t, results.Density.Point)

	require.Len(t, results.Classes, 3)
	for _, cr := range results.Classes {
		require.NoError(t, cr.Err, "class %s", cr.Class)
		assert.Positive(t, cr.Estimate.Point, "class %s", cr.Class)
	}

	require.NoError(t, results.PowerErr)
	require.Len(t, results.Power, 4)
	for i, row := range results.Power {
		require.NoError(t, row.Err)
		assert.Equal(t, (i+1)*4, row.SampleSize)
		if i > 0 {
			assert.Less(t, row.CV, results.Power[i-1].CV)
		}
	}

	require.Len(t, results.Lengths, 3)
	adults := results.Lengths[0]
	assert.Equal(t, survey.ClassAdult, adults.Class)
	assert.Equal(t, 4, adults.Count)
	assert.InDelta(t, 250, adults.Max, 1e-12)
}

func TestRunDensityMatchesSiteVectors(t *testing.T) {
	settings := testSettings(t)

	results, err := Run(context.Background(), settings, Options{})
	require.NoError(t, err)
	require.NoError(t, results.DensityErr)

	sumM, sumL2 := 0.0, 0.0
	for i, e := range results.SiteEstimates {
		sumM += e.MHat
		sumL2 += results.Sites[i].Site.L2
	}
	assert.InDelta(t, sumM/sumL2, results.Density.Point, 1e-9)
}

func TestRunIsolatesFailedTargets(t *testing.T) {
	settings := testSettings(t)

	// Raise the adult threshold past every handled fish: the adult class
	// total drops to zero without failing, the other targets are untouched
	// and the power projection reports its rows as undefined instead of
	// emitting an infinite CV.
	settings.SizeClass.AdultAbove = 500

	results, err := Run(context.Background(), settings, Options{})
	require.NoError(t, err)

	require.NoError(t, results.DensityErr)
	for _, cr := range results.Classes {
		require.NoError(t, cr.Err, "class %s", cr.Class)
		if cr.Class == survey.ClassAdult {
			// No adult ever handled: the extrapolated total is zero.
			assert.Zero(t, cr.Estimate.Point)
		} else {
			assert.Positive(t, cr.Estimate.Point, "class %s", cr.Class)
		}
	}

	require.NoError(t, results.PowerErr)
	for _, row := range results.Power {
		require.Error(t, row.Err)
		assert.True(t, errors.IsCategory(row.Err, errors.CategoryNonFiniteResult))
	}
}

func TestRunFailsOnMissingConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*conf.Settings)
	}{
		{name: "no pass table", mutate: func(s *conf.Settings) { s.Input.PassTable = "" }},
		{name: "no fish table", mutate: func(s *conf.Settings) { s.Input.FishTable = "" }},
		{name: "no frame reaches", mutate: func(s *conf.Settings) { s.Frame.Reaches = 0 }},
		{name: "no frame length", mutate: func(s *conf.Settings) { s.Frame.TotalLength = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			tt.mutate(settings)

			_, err := Run(context.Background(), settings, Options{})
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}

func TestRunAbortsOnBrokenTables(t *testing.T) {
	settings := testSettings(t)
	require.NoError(t, os.WriteFile(settings.Input.FishTable, []byte(
		"site_id,pass_number,fork_length_mm\nghost,1,120\n"), 0o644))

	_, err := Run(context.Background(), settings, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryInputIntegrity))
	assert.Contains(t, err.Error(), "unknown site")
}

func TestRunSkipPolicyDropsSiteAndRealigns(t *testing.T) {
	settings := testSettings(t)
	settings.Removal.Method = conf.MethodZippin
	settings.Removal.OnFitFailure = conf.FitFailureSkip

	// s4 catches (7,3) deplete fine; replace them with an increasing
	// pattern Zippin rejects.
	broken := `site_id,length_between_nets,pass_number,catch_count
s1,50,1,12
s1,50,2,5
s1,50,3,2
s2,40,1,0
s2,40,2,0
s3,35,1,10
s3,35,2,4
s4,60,1,3
s4,60,2,7
`
	require.NoError(t, os.WriteFile(settings.Input.PassTable, []byte(broken), 0o644))

	results, err := Run(context.Background(), settings, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, results.SampleSize)
	require.Len(t, results.Sites, 3)
	for i, e := range results.SiteEstimates {
		assert.Equal(t, results.Sites[i].Site.ID, e.SiteID)
		assert.NotEqual(t, "s4", e.SiteID)
	}
}

func TestRunAbortPolicyFailsOnUnfittableSite(t *testing.T) {
	settings := testSettings(t)
	settings.Removal.Method = conf.MethodZippin

	broken := `site_id,length_between_nets,pass_number,catch_count
s1,50,1,12
s1,50,2,5
s1,50,3,2
s2,40,1,0
s2,40,2,0
s3,35,1,10
s3,35,2,4
s4,60,1,3
s4,60,2,7
`
	require.NoError(t, os.WriteFile(settings.Input.PassTable, []byte(broken), 0o644))

	_, err := Run(context.Background(), settings, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDegenerateSite))
}
