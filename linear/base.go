// Package linear implements the linear regression estimators: ordinary least squares,
// ridge and lasso.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/core/parallel"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

var (
	_ model.Regressor   = (*LinearRegression)(nil)
	_ model.Regressor   = (*Ridge)(nil)
	_ model.Regressor   = (*Lasso)(nil)
	_ model.LinearModel = (*Lasso)(nil)
)

// Params holds the learned parameters shared by every linear estimator.
type Params struct {
	Weights []float64
	Bias    float64
}

// Coef returns a copy of the learned coefficients.
func (p *Params) Coef() []float64 {
	if p.Weights == nil {
		return nil
	}
	return append([]float64(nil), p.Weights...)
}

// Intercept returns the learned intercept.
func (p *Params) Intercept() float64 {
	return p.Bias
}

// predict computes X·w + b row by row.
func (p *Params) predict(X mat.Matrix) *mat.VecDense {
	r, c := X.Dims()
	out := mat.NewVecDense(r, nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			v := p.Bias
			for j := 0; j < c; j++ {
				v += X.At(i, j) * p.Weights[j]
			}
			out.SetVec(i, v)
		}
	})
	return out
}

// validateXY checks shapes and rejects NaN/Inf input.
func validateXY(op string, X mat.Matrix, y mat.Vector) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != nSamples {
		return 0, 0, errors.NewDimensionError(op, nSamples, y.Len(), 0)
	}
	if err := errors.CheckMatrix(op, X); err != nil {
		return 0, 0, err
	}
	if err := errors.CheckMatrix(op, y); err != nil {
		return 0, 0, err
	}
	return nSamples, nFeatures, nil
}

// centered is the design after optional mean removal.
type centered struct {
	X     *mat.Dense
	y     *mat.VecDense
	xMean []float64
	yMean float64
}

// center copies X and y, subtracting column means when fitIntercept is set.
func center(X mat.Matrix, y mat.Vector, fitIntercept bool) centered {
	r, c := X.Dims()
	out := centered{
		X:     mat.DenseCopyOf(X),
		y:     mat.VecDenseCopyOf(y),
		xMean: make([]float64, c),
	}
	if !fitIntercept {
		return out
	}

	for j := 0; j < c; j++ {
		out.xMean[j] = mat.Sum(out.X.ColView(j)) / float64(r)
	}
	out.yMean = mat.Sum(out.y) / float64(r)

	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				out.X.Set(i, j, out.X.At(i, j)-out.xMean[j])
			}
			out.y.SetVec(i, out.y.AtVec(i)-out.yMean)
		}
	})
	return out
}

// finish stores w and derives the intercept ȳ - x̄·w. A non-finite solution is a FitError.
func (p *Params) finish(model string, d centered, w []float64) error {
	if err := errors.CheckNumericalStability(model+".Fit", w); err != nil {
		return errors.NewFitError(model, "solution contains NaN or Inf", err)
	}
	p.Weights = w
	p.Bias = d.yMean
	for j, v := range w {
		p.Bias -= d.xMean[j] * v
	}
	return nil
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}
