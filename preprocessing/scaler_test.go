package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 25}, scaler.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), scaler.Scale[0], 1e-12)

	col := make([]float64, 4)
	for j := 0; j < 2; j++ {
		mat.Col(col, j, XScaled)
		mean, std := stat.PopMeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-12)
		assert.InDelta(t, 1, std, 1e-12)
	}

	back, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

// Test data must be transformed with the training statistics, not its own.
func TestStandardScalerUsesTrainingStatistics(t *testing.T) {
	XTrain := mat.NewDense(3, 1, []float64{0, 1, 2})
	XTest := mat.NewDense(2, 1, []float64{100, 102})

	scaler := NewStandardScalerDefault()
	require.NoError(t, scaler.Fit(XTrain))
	XTestScaled, err := scaler.Transform(XTest)
	require.NoError(t, err)

	trainStd := math.Sqrt(2.0 / 3.0)
	assert.InDelta(t, (100-1)/trainStd, XTestScaled.At(0, 0), 1e-9)
	assert.InDelta(t, (102-1)/trainStd, XTestScaled.At(1, 0), 1e-9)
}

func TestStandardScalerZeroVariance(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 5, 2, 5, 3, 5})
	scaler := NewStandardScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, scaler.Scale[1])
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, XScaled.At(i, 1))
	}
}

func TestStandardScalerErrors(t *testing.T) {
	scaler := NewStandardScalerDefault()

	_, err := scaler.Transform(mat.NewDense(1, 1, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
