package evaluation

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
	"github.com/YuminosukeSato/regpipe/trainer"
)

// CVSummary aggregates K-fold cross-validation. Standard deviations are population
// standard deviations over folds.
type CVSummary struct {
	Folds  int       `json:"folds" yaml:"folds"`
	Scores []float64 `json:"scores" yaml:"scores"`
	Mean   float64   `json:"mean" yaml:"mean"`
	Std    float64   `json:"std" yaml:"std"`

	RMSEMean float64 `json:"rmse_mean" yaml:"rmse_mean"`
	RMSEStd  float64 `json:"rmse_std" yaml:"rmse_std"`
	MAEMean  float64 `json:"mae_mean" yaml:"mae_mean"`
	MAEStd   float64 `json:"mae_std" yaml:"mae_std"`
}

// CrossValidate trains a fresh pipeline for spec on each of k shuffled folds of (X, y)
// and scores it on the held-out fold.
func CrossValidate(X mat.Matrix, y mat.Vector, spec trainer.Spec, k int, seed uint64) (*CVSummary, error) {
	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("CrossValidate", n, y.Len(), 0)
	}
	if k < 2 {
		return nil, errors.NewValidationError("k", "need at least 2 folds", k)
	}
	if k > n {
		return nil, errors.NewValidationError("k", fmt.Sprintf("more folds than samples (%d)", n), k)
	}

	logger := log.GetLoggerWithName("evaluation").With(
		log.ModelTypeKey, string(spec.Kind()),
		log.PhaseKey, log.PhaseValidation,
	)
	start := time.Now()

	folds := NewKFold(k, true, seed).Split(n)
	r2s := make([]float64, k)
	rmses := make([]float64, k)
	maes := make([]float64, k)

	for i, fold := range folds {
		XTrain, yTrain := takeRows(X, y, fold.Train)
		XTest, yTest := takeRows(X, y, fold.Test)

		p, err := trainer.Train(XTrain, yTrain, spec)
		if err != nil {
			return nil, errors.Wrapf(err, "cross-validation fold %d", i)
		}
		yPred, err := p.Predict(XTest)
		if err != nil {
			return nil, errors.Wrapf(err, "cross-validation fold %d", i)
		}
		if r2s[i], err = metrics.R2Score(yTest, yPred); err != nil {
			return nil, err
		}
		if rmses[i], err = metrics.RMSE(yTest, yPred); err != nil {
			return nil, err
		}
		if maes[i], err = metrics.MAE(yTest, yPred); err != nil {
			return nil, err
		}
		logger.Debug("Fold scored", log.FoldKey, i, log.R2ScoreKey, r2s[i])
	}

	s := &CVSummary{Folds: k, Scores: r2s}
	s.Mean, s.Std = stat.PopMeanStdDev(r2s, nil)
	s.RMSEMean, s.RMSEStd = stat.PopMeanStdDev(rmses, nil)
	s.MAEMean, s.MAEStd = stat.PopMeanStdDev(maes, nil)

	logger.Info("Cross-validation finished",
		"folds", k,
		"cv_mean", s.Mean,
		"cv_std", s.Std,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return s, nil
}

func takeRows(X mat.Matrix, y mat.Vector, idx []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	Xs := mat.NewDense(len(idx), c, nil)
	ys := mat.NewVecDense(len(idx), nil)
	for k, i := range idx {
		for j := 0; j < c; j++ {
			Xs.Set(k, j, X.At(i, j))
		}
		ys.SetVec(k, y.AtVec(i))
	}
	return Xs, ys
}
