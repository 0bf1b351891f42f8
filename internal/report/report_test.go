package report

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlammi/troutpop-go/internal/analysis"
	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/errors"
	"github.com/jlammi/troutpop-go/internal/estimator"
	"github.com/jlammi/troutpop-go/internal/survey"
)

func testResults() *analysis.Results {
	return &analysis.Results{
		RunID:       "7e6ed1f2-run",
		StartedAt:   time.Date(2025, 8, 12, 9, 30, 0, 0, time.UTC),
		Version:     "dev",
		ProgramName: "testwater",
		Frame:       survey.Frame{Reaches: 691, TotalLength: 141000},
		WetFraction: 1,
		SampleSize:  2,
		Model:       "carlestrub",
		Confidence:  0.95,
		Sites: []survey.SiteData{
			{Site: survey.Site{ID: "s1", L2: 50, Wet: true}, Catches: []int{12, 5, 2}},
			{Site: survey.Site{ID: "s2", L2: 40, Wet: true}, Catches: []int{0, 0}},
		},
		SiteEstimates: []estimator.SiteEstimate{
			{SiteID: "s1", MHat: 20.5, VMHat: 4},
			{SiteID: "s2"},
		},
		Density: estimator.Estimate{Point: 0.2278, StdErr: 0.05, Lower: 0.1, Upper: 0.35, CV: 21.9},
		Classes: []analysis.ClassResult{
			{Class: survey.ClassAdult, Estimate: estimator.Estimate{Point: 10500, StdErr: 2000, Lower: 6000, Upper: 15000, CV: 19.0}},
			{Class: survey.ClassEnigmatic, Err: errors.NewStd("no handled fish")},
			{Class: survey.ClassJuvenile, Estimate: estimator.Estimate{Point: 21000, StdErr: 5000, Lower: 11000, Upper: 31000, CV: 23.8}},
		},
		Power: []estimator.PowerRow{
			{Multiplier: 1, SampleSize: 2, CV: 19.0},
			{Multiplier: 400, SampleSize: 800, Err: errors.NewStd("frame exhausted")},
		},
		Lengths: []analysis.LengthSummary{
			{Class: survey.ClassAdult, Count: 4, Mean: 223.8, Median: 220, Min: 205, Max: 250},
			{Class: survey.ClassEnigmatic, Count: 0},
			{Class: survey.ClassJuvenile, Count: 2, Mean: 107.5, Median: 107.5, Min: 95, Max: 120},
		},
	}
}

func TestWriteSiteTableText(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteSiteTable(&sb, testResults(), conf.FormatTable))

	out := sb.String()
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "20.50")
	assert.Contains(t, out, "2.00") // SE = sqrt(4)
	// Zero-catch site present with explicit zeros, not dropped.
	assert.Contains(t, out, "s2")
	assert.Contains(t, out, "0.00")
}

func TestWriteSiteTableCSV(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteSiteTable(&sb, testResults(), conf.FormatCSV))

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"site_id", "length_m", "passes", "total_catch", "abundance", "std_error"}, records[0])
	assert.Equal(t, []string{"s1", "50.0", "3", "19", "20.50", "2.00"}, records[1])
	assert.Equal(t, []string{"s2", "40.0", "2", "0", "0.00", "0.00"}, records[2])
}

func TestWriteRegionalTableRendersFailureNotes(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteRegionalTable(&sb, testResults(), conf.FormatTable))

	out := sb.String()
	assert.Contains(t, out, "density")
	assert.Contains(t, out, "adult")
	assert.Contains(t, out, "not estimable: no handled fish")
	assert.NotContains(t, out, "NaN")

	sb.Reset()
	require.NoError(t, WriteRegionalTable(&sb, testResults(), conf.FormatCSV))
	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "enigmatic", records[3][0])
	assert.Equal(t, "no handled fish", records[3][7])
	assert.Empty(t, records[3][2])
}

func TestWriteRegionalTableZeroEstimateCV(t *testing.T) {
	t.Parallel()

	r := testResults()
	r.Density = estimator.Estimate{Point: 0, CV: math.NaN()}

	var sb strings.Builder
	require.NoError(t, WriteRegionalTable(&sb, r, conf.FormatTable))
	assert.Contains(t, sb.String(), "n/a")
	assert.NotContains(t, sb.String(), "NaN")
}

func TestWritePowerTable(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WritePowerTable(&sb, testResults(), conf.FormatTable))

	out := sb.String()
	assert.Contains(t, out, "19.0%")
	assert.Contains(t, out, "n/a")

	sb.Reset()
	require.NoError(t, WritePowerTable(&sb, testResults(), conf.FormatCSV))
	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "2", "19.0", ""}, records[1])
	assert.Equal(t, "frame exhausted", records[2][3])
}

func TestWriteLengthTable(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteLengthTable(&sb, testResults(), conf.FormatTable))

	out := sb.String()
	assert.Contains(t, out, "adult")
	assert.Contains(t, out, "223.8")
	// Empty class renders dashes, not zeros pretending to be lengths.
	assert.Contains(t, out, "-")
}

func TestWriteHeaderStampsProvenance(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, WriteHeader(&sb, testResults()))

	out := sb.String()
	assert.Contains(t, out, "testwater")
	assert.Contains(t, out, "7e6ed1f2-run")
	assert.Contains(t, out, "691 reaches")
	assert.Contains(t, out, "141,000 m")
	assert.Contains(t, out, "carlestrub")
}

func TestRenderWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, Render(testResults(), dir, conf.FormatCSV))

	for _, name := range []string{"sites.csv", "regional.csv", "power.csv", "lengths.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}
