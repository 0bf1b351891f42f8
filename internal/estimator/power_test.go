package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlammi/troutpop-go/internal/errors"
)

func testBasis(t *testing.T) Basis {
	t.Helper()

	_, basis, err := ClassTotal(
		[]int{6, 2, 10}, []int{20, 10, 33},
		[]float64{25, 12, 40},
		[]float64{4, 2.5, 9},
		[]float64{50, 35, 60},
		referenceFrame(), 0.95)
	require.NoError(t, err)
	return basis
}

func TestProjectMatchesHandRecomputation(t *testing.T) {
	t.Parallel()

	b := testBasis(t)
	rows := Project(b, []int{1, 2, 3, 4})
	require.Len(t, rows, 4)

	for i, row := range rows {
		mult := i + 1
		require.NoError(t, row.Err, "multiplier %d", mult)
		assert.Equal(t, mult, row.Multiplier)
		assert.Equal(t, mult*3, row.SampleSize)

		in := float64(mult * 3)
		vRatio := float64(mult) * b.SumSq / (in - 1)
		scale := b.L2Bar * b.MBar
		vD := (vRatio*((b.WetReaches-in)/(in*b.WetReaches)) + b.VSite/b.WetReaches) / (scale * scale)
		vT := vD * b.Expansion * b.Expansion
		assert.InDelta(t, 100*math.Sqrt(vT)/b.THat, row.CV, 1e-9, "multiplier %d", mult)
	}
}

func TestProjectAtMultiplierOneMatchesOriginalFit(t *testing.T) {
	t.Parallel()

	est, basis, err := ClassTotal(
		[]int{6, 2, 10}, []int{20, 10, 33},
		[]float64{25, 12, 40},
		[]float64{4, 2.5, 9},
		[]float64{50, 35, 60},
		referenceFrame(), 0.95)
	require.NoError(t, err)

	rows := Project(basis, []int{1})
	require.Len(t, rows, 1)
	require.NoError(t, rows[0].Err)
	assert.InDelta(t, est.CV, rows[0].CV, 1e-9)
}

func TestProjectCVNeverIncreasesWithSampleSize(t *testing.T) {
	t.Parallel()

	rows := Project(testBasis(t), []int{1, 2, 4, 8, 16, 32, 64, 128})
	prev := math.Inf(1)
	for _, row := range rows {
		if row.Err != nil {
			// Only the frame-exhaustion boundary may fail here.
			assert.ErrorIs(t, row.Err, ErrFrameExhausted)
			continue
		}
		assert.LessOrEqual(t, row.CV, prev, "sample size %d", row.SampleSize)
		prev = row.CV
	}
}

func TestProjectFailsPastWettedFrame(t *testing.T) {
	t.Parallel()

	b := testBasis(t)
	// 3 sites against Nw = 691: multiplier 231 projects 693 sites.
	rows := Project(b, []int{230, 231})
	require.Len(t, rows, 2)

	assert.NoError(t, rows[0].Err)
	require.Error(t, rows[1].Err)
	assert.ErrorIs(t, rows[1].Err, ErrFrameExhausted)
	assert.True(t, errors.IsCategory(rows[1].Err, errors.CategoryNonFiniteResult))
	// The failed row never leaks a non-finite CV.
	assert.Zero(t, rows[1].CV)
}

func TestProjectIsolatesFailuresPerMultiplier(t *testing.T) {
	t.Parallel()

	rows := Project(testBasis(t), []int{2, 500, 3})
	require.Len(t, rows, 3)
	assert.NoError(t, rows[0].Err)
	assert.Error(t, rows[1].Err)
	assert.NoError(t, rows[2].Err)
}
