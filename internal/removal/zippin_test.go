package removal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZippinGeometricDepletion(t *testing.T) {
	t.Parallel()

	// Catches halve each pass, the signature of p = 0.5: the likelihood
	// equation solves exactly to q = 0.5 and N = 105 / (1 - 0.5^3) = 120.
	fit, err := NewZippin().Fit([]int{60, 30, 15})
	require.NoError(t, err)
	assert.InDelta(t, 120, fit.Estimate, 1e-6)
	assert.InDelta(t, 0.5, fit.CaptureProb, 1e-9)
	assert.Equal(t, 105, fit.TotalCatch)
}

func TestZippinTwoPassMatchesSeberLeCren(t *testing.T) {
	t.Parallel()

	// For k=2 the MLE reduces to N = C1^2 / (C1 - C2).
	fit, err := NewZippin().Fit([]int{10, 4})
	require.NoError(t, err)
	assert.InDelta(t, 100.0/6.0, fit.Estimate, 1e-6)
	assert.InDelta(t, 0.6, fit.CaptureProb, 1e-9)
}

func TestZippinRejectsNonDepletingCatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		catches []int
	}{
		{name: "flat catches", catches: []int{5, 5}},
		{name: "increasing catches", catches: []int{3, 7}},
		{name: "late concentration", catches: []int{1, 2, 10}},
	}

	z := NewZippin()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := z.Fit(tt.catches)
			assert.ErrorIs(t, err, ErrNotDepleting)
		})
	}
}

func TestZippinAgreesWithCarleStrubOnSteepDepletion(t *testing.T) {
	t.Parallel()

	// With near-complete removal both estimators must land on essentially
	// the same abundance; Carle-Strub rounds up to an integer.
	catches := []int{40, 8, 1}
	zf, err := NewZippin().Fit(catches)
	require.NoError(t, err)
	cf, err := NewCarleStrub().Fit(catches)
	require.NoError(t, err)
	assert.InDelta(t, zf.Estimate, cf.Estimate, 1.5)
}
