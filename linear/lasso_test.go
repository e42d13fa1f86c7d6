package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(nil) })
	return &warnings
}

func TestLasso_SingleFeature(t *testing.T) {
	// (1/n)Σx² = 1.25 and (1/n)Σxy = 2.5, so w = (2.5 - α) / 1.25
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{3, 5, 7, 9})

	l := NewLasso()
	require.NoError(t, l.Fit(X, y))

	assert.InDelta(t, 2.4/1.25, l.Coef()[0], 1e-12)
	assert.InDelta(t, 6.0-2.5*2.4/1.25, l.Intercept(), 1e-12)
	assert.True(t, l.Converged)
	assert.Equal(t, 2, l.NIter)
}

func TestLasso_LargeAlphaZeroesEverything(t *testing.T) {
	X, y := makeLinearData(50, []float64{1, -1}, 6, 0.1, 5)

	l := NewLasso(WithAlpha(1000))
	require.NoError(t, l.Fit(X, y))

	assert.Equal(t, 0, l.NonZero())
	assert.InDelta(t, mat.Sum(y)/50, l.Intercept(), 1e-12)
}

func TestLasso_SelectsInformativeFeatures(t *testing.T) {
	X, y := makeLinearData(300, []float64{5, 0, -4, 0, 0}, 1, 0.05, 9)

	l := NewLasso(WithAlpha(0.05))
	require.NoError(t, l.Fit(X, y))

	coef := l.Coef()
	assert.InDelta(t, 5.0, coef[0], 0.3)
	assert.InDelta(t, -4.0, coef[2], 0.3)
	assert.Less(t, l.NonZero(), 5)

	score, err := l.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestLasso_NonConvergenceWarns(t *testing.T) {
	warnings := captureWarnings(t)
	X, y := makeLinearData(100, []float64{3, 2, 1}, 0, 0.1, 13)

	l := NewLasso(WithAlpha(0.001), WithMaxIter(1), WithTol(1e-12))
	require.NoError(t, l.Fit(X, y))

	assert.False(t, l.Converged)
	assert.Equal(t, 1, l.NIter)
	require.Len(t, *warnings, 1)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As((*warnings)[0], &cw))
	assert.Equal(t, "Lasso", cw.Algorithm)
	assert.True(t, l.IsFitted())
}

func TestLasso_InvalidParams(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewVecDense(2, []float64{1, 2})

	for _, l := range []*Lasso{
		NewLasso(WithAlpha(-0.1)),
		NewLasso(WithMaxIter(0)),
		NewLasso(WithTol(0)),
	} {
		var valErr *errors.ValidationError
		assert.True(t, errors.As(l.Fit(X, y), &valErr))
	}
}
