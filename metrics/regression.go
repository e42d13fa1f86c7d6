// Package metrics implements the regression error and goodness-of-fit measures used by
// the evaluator.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// residuals validates the pair and returns yTrue - yPred.
func residuals(op string, yTrue, yPred mat.Vector) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	res := make([]float64, n)
	for i := range res {
		res[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return res, nil
}

// MSE computes the mean squared error.
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	return floats.Dot(res, res) / float64(len(res)), nil
}

// RMSE computes the square root of the mean squared error.
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Norm(res, 1) / float64(len(res)), nil
}

// R2Score computes the coefficient of determination 1 - RSS/TSS. A constant yTrue gives
// 1 for a perfect prediction and 0 otherwise.
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := mat.Sum(yTrue) / float64(len(res))
	var tss float64
	for i := range res {
		d := yTrue.AtVec(i) - yMean
		tss += d * d
	}
	rss := floats.Dot(res, res)

	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// MAPE computes the mean absolute percentage error as a fraction (0.05 means 5%).
// Samples whose actual value is zero are skipped. When every actual value is zero the
// metric is undefined and an *errors.UndefinedMetricWarning is returned.
func MAPE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	validCount := 0
	for i, r := range res {
		actual := yTrue.AtVec(i)
		if actual == 0 {
			continue
		}
		sum += math.Abs(r) / math.Abs(actual)
		validCount++
	}

	if validCount == 0 {
		return 0, errors.NewUndefinedMetricWarning("mape", "all actual values are zero")
	}
	return sum / float64(validCount), nil
}

// ExplainedVarianceScore computes 1 - Var(yTrue - yPred) / Var(yTrue). A constant yTrue
// gives 1 for a perfect prediction and 0 otherwise.
func ExplainedVarianceScore(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	actual := make([]float64, len(res))
	for i := range actual {
		actual[i] = yTrue.AtVec(i)
	}
	varTrue := stat.PopVariance(actual, nil)
	varRes := stat.PopVariance(res, nil)

	if varTrue == 0 {
		if varRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - varRes/varTrue, nil
}

// ResidualSummary describes the distribution of yTrue - yPred.
type ResidualSummary struct {
	Mean   float64
	Std    float64 // population standard deviation
	Min    float64
	Max    float64
	MaxAbs float64
}

// Residuals summarizes the residuals yTrue - yPred.
func Residuals(yTrue, yPred mat.Vector) (ResidualSummary, error) {
	res, err := residuals("Residuals", yTrue, yPred)
	if err != nil {
		return ResidualSummary{}, err
	}

	mean, std := stat.PopMeanStdDev(res, nil)
	return ResidualSummary{
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(res),
		Max:    floats.Max(res),
		MaxAbs: floats.Norm(res, math.Inf(1)),
	}, nil
}
