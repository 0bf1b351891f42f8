package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Frame.Reaches = 691
	s.Frame.TotalLength = 141000
	s.SizeClass.JuvenileBelow = 150
	s.SizeClass.AdultAbove = 200
	s.Removal.Method = MethodCarleStrub
	s.Removal.OnFitFailure = FitFailureAbort
	s.Estimate.Confidence = 0.95
	s.Estimate.Multipliers = []int{1, 2, 3, 4}
	s.Output.Format = FormatTable
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantMsg string
	}{
		{
			name:    "negative reaches",
			mutate:  func(s *Settings) { s.Frame.Reaches = -1 },
			wantMsg: "frame.reaches",
		},
		{
			name:    "wet fraction above one",
			mutate:  func(s *Settings) { s.Frame.WetFraction = 1.5 },
			wantMsg: "frame.wetfraction",
		},
		{
			name:    "inverted size thresholds",
			mutate:  func(s *Settings) { s.SizeClass.AdultAbove = 100 },
			wantMsg: "sizeclass.adultabove",
		},
		{
			name:    "unknown removal method",
			mutate:  func(s *Settings) { s.Removal.Method = "leslie" },
			wantMsg: "removal.method",
		},
		{
			name:    "unknown fit failure policy",
			mutate:  func(s *Settings) { s.Removal.OnFitFailure = "retry" },
			wantMsg: "removal.onfitfailure",
		},
		{
			name:    "confidence at bound",
			mutate:  func(s *Settings) { s.Estimate.Confidence = 1.0 },
			wantMsg: "estimate.confidence",
		},
		{
			name:    "zero multiplier",
			mutate:  func(s *Settings) { s.Estimate.Multipliers = []int{0, 1} },
			wantMsg: "estimate.multipliers",
		},
		{
			name:    "duplicate multiplier",
			mutate:  func(s *Settings) { s.Estimate.Multipliers = []int{2, 2} },
			wantMsg: "twice",
		},
		{
			name:    "unknown output format",
			mutate:  func(s *Settings) { s.Output.Format = "pdf" },
			wantMsg: "output.format",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
