package trainer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/dataset"
	"github.com/YuminosukeSato/regpipe/linear"
	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
)

func prepareDefault(t *testing.T) *dataset.Split {
	t.Helper()
	split, err := dataset.Prepare(dataset.OptionsFromConfig(config.Default()))
	require.NoError(t, err)
	return split
}

func TestTrainModelAllKinds(t *testing.T) {
	split := prepareDefault(t)

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			p, score, err := TrainModel(split.XTrain, split.YTrain, kind, nil)
			require.NoError(t, err)
			assert.Greater(t, score, 0.8)
			assert.Equal(t, Kind(kind), p.Kind())

			_, nFeatures := split.XTrain.Dims()
			assert.Equal(t, nFeatures, p.NFeatures)
			assert.False(t, p.TrainedAt.IsZero())
		})
	}
}

func TestTrainModelUnknownType(t *testing.T) {
	// nil data proves the tag is rejected before any numeric work
	p, score, err := TrainModel(nil, nil, "bogus", nil)
	assert.Nil(t, p)
	assert.Zero(t, score)

	var unsupported *errors.UnsupportedModelError
	require.True(t, errors.As(err, &unsupported))
	assert.Contains(t, err.Error(), "bogus")
}

func TestTrainPolynomialAppliesTransform(t *testing.T) {
	// y = 1 + 2x + 3x^2
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i)/5 - 2
		X.Set(i, 0, x)
		y.SetVec(i, 1+2*x+3*x*x)
	}

	p, err := Train(X, y, PolynomialSpec{Degree: 2, FitIntercept: true})
	require.NoError(t, err)
	require.NotNil(t, p.Poly)
	require.Len(t, p.Coef(), 2)
	assert.InDelta(t, 2.0, p.Coef()[0], 1e-8)
	assert.InDelta(t, 3.0, p.Coef()[1], 1e-8)
	assert.InDelta(t, 1.0, p.Intercept(), 1e-8)

	// Predict takes the raw features
	pred, err := p.Predict(mat.NewDense(1, 1, []float64{4}))
	require.NoError(t, err)
	assert.InDelta(t, 57.0, pred.AtVec(0), 1e-6)
}

func TestTrainLinearMatchesEstimator(t *testing.T) {
	split := prepareDefault(t)

	p, err := Train(split.XTrain, split.YTrain, LinearSpec{FitIntercept: true})
	require.NoError(t, err)
	assert.Nil(t, p.Poly)

	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(split.XTrain, split.YTrain))
	assert.InDeltaSlice(t, lr.Coef(), p.Coef(), 1e-12)
	assert.InDelta(t, lr.Intercept(), p.Intercept(), 1e-12)
}

func TestTrainZeroVarianceFeature(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
		5, 5,
		6, 5,
	})
	y := mat.NewVecDense(6, []float64{2, 4, 6, 8, 10, 12})

	for _, spec := range []Spec{LinearSpec{FitIntercept: true}, PolynomialSpec{Degree: 2, FitIntercept: true}} {
		t.Run(string(spec.Kind()), func(t *testing.T) {
			_, err := Train(X, y, spec)
			var fitErr *errors.FitError
			require.True(t, errors.As(err, &fitErr), "got %v", err)
			assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
		})
	}

	// the penalty keeps the system solvable
	p, err := Train(X, y, RidgeSpec{Alpha: 1.0, FitIntercept: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, p.Coef()[1], 1e-12)
}

func TestTrainDimensionMismatch(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(3, []float64{1, 2, 3})

	_, err := Train(X, y, LinearSpec{FitIntercept: true})
	assert.Error(t, err)
}

func TestEndToEndLinear(t *testing.T) {
	cfg := config.Default()
	cfg.Data.NSamples = 100
	cfg.Data.NFeatures = 5
	cfg.Data.RandomState = 42

	split, err := dataset.Prepare(dataset.OptionsFromConfig(cfg))
	require.NoError(t, err)

	p, trainScore, err := TrainModel(split.XTrain, split.YTrain, "linear", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, trainScore, 0.9)

	yPred, err := p.Predict(split.XTest)
	require.NoError(t, err)
	testScore, err := metrics.R2Score(split.YTest, yPred)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, testScore, 0.85)

	path := filepath.Join(t.TempDir(), "models", "linear.gob")
	require.NoError(t, SaveModel(p, path))
	loaded, err := LoadModel(path)
	require.NoError(t, err)

	again, err := loaded.Predict(split.XTest)
	require.NoError(t, err)
	assert.Equal(t, yPred.RawVector().Data, again.RawVector().Data)
}

func TestTrainLogsHyperparameters(t *testing.T) {
	split := prepareDefault(t)

	tests := []struct {
		spec     Spec
		key      string
		want     any
		absentOf string
	}{
		{PolynomialSpec{Degree: 2, FitIntercept: true}, log.DegreeKey, 2, log.RegularizationKey},
		{RidgeSpec{Alpha: 0.5, FitIntercept: true}, log.RegularizationKey, 0.5, log.DegreeKey},
		{LassoSpec{Alpha: 0.1, MaxIter: 1000, Tol: 1e-4, FitIntercept: true}, log.RegularizationKey, 0.1, log.DegreeKey},
	}
	for _, tt := range tests {
		t.Run(string(tt.spec.Kind()), func(t *testing.T) {
			rec, restore := log.Capture(log.LevelInfo)
			defer restore()

			_, err := Train(split.XTrain, split.YTrain, tt.spec)
			require.NoError(t, err)

			e, ok := rec.Find("Model trained")
			require.True(t, ok)
			assert.Equal(t, "trainer", e.Fields[log.ComponentKey])
			assert.Equal(t, string(tt.spec.Kind()), e.Fields[log.ModelTypeKey])
			assert.Equal(t, tt.spec.Params(), e.Fields[log.HyperParamsKey])
			assert.Equal(t, tt.want, e.Fields[tt.key])
			assert.NotContains(t, e.Fields, tt.absentOf)
		})
	}
}

func TestTrainLassoConvergenceWarningIsLogged(t *testing.T) {
	split := prepareDefault(t)
	rec, restore := log.Capture(log.LevelInfo)
	defer restore()

	_, err := Train(split.XTrain, split.YTrain, LassoSpec{Alpha: 0.001, MaxIter: 1, Tol: 1e-12, FitIntercept: true})
	require.NoError(t, err)

	var warning *errors.ConvergenceWarning
	for _, e := range rec.Entries() {
		if e.Level != log.LevelWarn {
			continue
		}
		if w, ok := e.Fields["warning"].(error); ok && errors.As(w, &warning) {
			assert.Equal(t, log.ErrorConvergence, e.Fields[log.ErrorCodeKey])
		}
	}
	require.NotNil(t, warning, "expected a ConvergenceWarning in %v", rec.Entries())
	assert.Equal(t, "Lasso", warning.Algorithm)
}
