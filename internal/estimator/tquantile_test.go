package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentTQuantileKnownValues(t *testing.T) {
	t.Parallel()

	// Standard table values for the two-sided 95% interval.
	tests := []struct {
		p    float64
		df   int
		want float64
	}{
		{p: 0.975, df: 1, want: 12.7062047364},
		{p: 0.975, df: 4, want: 2.7764451052},
		{p: 0.975, df: 10, want: 2.2281388520},
		{p: 0.975, df: 30, want: 2.0422724563},
		{p: 0.95, df: 10, want: 1.8124611228},
		{p: 0.5, df: 7, want: 0},
	}
	for _, tt := range tests {
		got := studentTQuantile(tt.p, tt.df)
		assert.InDelta(t, tt.want, got, 1e-8, "p=%g df=%d", tt.p, tt.df)
	}
}

func TestStudentTQuantileSymmetry(t *testing.T) {
	t.Parallel()

	for _, df := range []int{1, 3, 9, 25} {
		lower := studentTQuantile(0.025, df)
		upper := studentTQuantile(0.975, df)
		assert.Negative(t, lower)
		assert.InDelta(t, -upper, lower, 1e-8, "df=%d", df)
	}
}

func TestStudentTQuantileRejectsDegenerateProbabilities(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsNaN(studentTQuantile(0, 5)))
	assert.True(t, math.IsNaN(studentTQuantile(1, 5)))
	assert.True(t, math.IsNaN(studentTQuantile(-0.1, 5)))
}
