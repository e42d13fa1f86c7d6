package trainer

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/linear"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
	"github.com/YuminosukeSato/regpipe/preprocessing"
)

// Train fits the model described by spec on (X, y) and returns the fitted Pipeline.
// Degenerate input that the solver cannot handle is reported as a FitError; invalid
// hyperparameters as a ValidationError.
func Train(X mat.Matrix, y mat.Vector, spec Spec) (p *Pipeline, err error) {
	defer errors.Recover(&err, "trainer.Train")

	var (
		est  Estimator
		poly *preprocessing.PolynomialFeatures
		Xfit = X
	)
	switch s := spec.(type) {
	case LinearSpec:
		est = linear.NewLinearRegression(linear.WithFitIntercept(s.FitIntercept), linear.WithPositive(s.Positive))
	case PolynomialSpec:
		poly = preprocessing.NewPolynomialFeatures(s.Degree)
		if Xfit, err = poly.FitTransform(X); err != nil {
			return nil, err
		}
		est = linear.NewLinearRegression(linear.WithFitIntercept(s.FitIntercept))
	case RidgeSpec:
		est = linear.NewRidge(linear.WithAlpha(s.Alpha), linear.WithFitIntercept(s.FitIntercept))
	case LassoSpec:
		est = linear.NewLasso(
			linear.WithAlpha(s.Alpha),
			linear.WithMaxIter(s.MaxIter),
			linear.WithTol(s.Tol),
			linear.WithFitIntercept(s.FitIntercept),
		)
	default:
		return nil, errors.NewUnsupportedModelError(fmt.Sprintf("%T", spec), Kinds())
	}

	logger := log.GetLoggerWithName("trainer").With(log.ModelTypeKey, string(spec.Kind()))
	nSamples, nFeatures := X.Dims()
	start := time.Now()

	if err := est.Fit(Xfit, y); err != nil {
		var fitErr *errors.FitError
		var valErr *errors.ValidationError
		if !errors.As(err, &fitErr) && !errors.As(err, &valErr) {
			err = errors.NewFitError(string(spec.Kind()), "estimator rejected the training data", err)
		}
		logger.Error("Training failed", err, log.OperationKey, log.OperationFit)
		return nil, err
	}

	fields := []any{
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.HyperParamsKey, spec.Params(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	switch s := spec.(type) {
	case PolynomialSpec:
		fields = append(fields, log.DegreeKey, s.Degree)
	case RidgeSpec:
		fields = append(fields, log.RegularizationKey, s.Alpha)
	case LassoSpec:
		lasso := est.(*linear.Lasso)
		fields = append(fields, log.RegularizationKey, s.Alpha, log.IterationKey, lasso.NIter, "non_zero", lasso.NonZero())
	}
	logger.Info("Model trained", fields...)

	return &Pipeline{
		Spec:      spec,
		Poly:      poly,
		Estimator: est,
		NFeatures: nFeatures,
		TrainedAt: time.Now().UTC(),
	}, nil
}

// TrainModel parses modelType and params into a Spec, trains it and returns the pipeline
// together with its R² on the training data. An unknown modelType fails before any
// numeric work.
func TrainModel(X mat.Matrix, y mat.Vector, modelType string, params map[string]any) (*Pipeline, float64, error) {
	spec, err := ParseSpec(modelType, params)
	if err != nil {
		return nil, 0, err
	}
	p, err := Train(X, y, spec)
	if err != nil {
		return nil, 0, err
	}
	score, err := p.Score(X, y)
	if err != nil {
		return nil, 0, err
	}
	log.GetLoggerWithName("trainer").Info("Training score",
		log.ModelTypeKey, modelType,
		log.R2ScoreKey, score,
	)
	return p, score, nil
}
