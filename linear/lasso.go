package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// Lasso defaults.
const (
	DefaultLassoAlpha   = 0.1
	DefaultLassoMaxIter = 1000
	DefaultLassoTol     = 1e-4
)

// Lasso is least squares with an L1 penalty, minimizing
//
//	(1/2n)·||y - Xw||² + α·||w||₁
//
// by cyclic coordinate descent with soft-thresholding. Coefficients of uninformative
// features are driven exactly to zero.
type Lasso struct {
	*model.StateManager
	Params

	Alpha        float64
	MaxIter      int
	Tol          float64
	FitIntercept bool

	// NIter is the number of full passes over the features made by the last Fit.
	NIter int
	// Converged reports whether the last Fit met the tolerance within MaxIter passes.
	Converged bool
}

// NewLasso creates a Lasso estimator. It accepts WithAlpha, WithMaxIter, WithTol and
// WithFitIntercept.
func NewLasso(opts ...Option) *Lasso {
	s := applyOptions(settings{
		fitIntercept: true,
		alpha:        DefaultLassoAlpha,
		maxIter:      DefaultLassoMaxIter,
		tol:          DefaultLassoTol,
	}, opts)
	return &Lasso{
		StateManager: model.NewStateManager(),
		Alpha:        s.alpha,
		MaxIter:      s.maxIter,
		Tol:          s.tol,
		FitIntercept: s.fitIntercept,
	}
}

// Fit trains the model on X and y. Running out of iterations is not an error: the
// current coefficients are kept and a ConvergenceWarning is emitted.
func (l *Lasso) Fit(X mat.Matrix, y mat.Vector) error {
	switch {
	case l.Alpha < 0:
		return errors.NewValidationError("alpha", "must not be negative", l.Alpha)
	case l.MaxIter < 1:
		return errors.NewValidationError("max_iter", "must be positive", l.MaxIter)
	case l.Tol <= 0:
		return errors.NewValidationError("tol", "must be positive", l.Tol)
	}
	nSamples, nFeatures, err := validateXY("Lasso.Fit", X, y)
	if err != nil {
		return err
	}

	d := center(X, y, l.FitIntercept)
	n := float64(nSamples)

	// (1/n)·||X_j||²
	colNorm := make([]float64, nFeatures)
	for j := range colNorm {
		col := d.X.ColView(j)
		colNorm[j] = mat.Dot(col, col) / n
	}

	w := make([]float64, nFeatures)
	residual := mat.VecDenseCopyOf(d.y)
	l.Converged = false
	for l.NIter = 1; l.NIter <= l.MaxIter; l.NIter++ {
		maxDelta, maxW := 0.0, 0.0
		for j := 0; j < nFeatures; j++ {
			if colNorm[j] == 0 {
				continue
			}
			col := d.X.ColView(j)
			rho := mat.Dot(col, residual)/n + colNorm[j]*w[j]
			next := softThreshold(rho, l.Alpha) / colNorm[j]
			if delta := next - w[j]; delta != 0 {
				residual.AddScaledVec(residual, -delta, col)
				maxDelta = math.Max(maxDelta, math.Abs(delta))
				w[j] = next
			}
			maxW = math.Max(maxW, math.Abs(w[j]))
		}
		if maxW == 0 || maxDelta <= l.Tol*maxW {
			l.Converged = true
			break
		}
	}
	if !l.Converged {
		l.NIter = l.MaxIter
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.MaxIter,
			"increase max_iter or alpha, or scale the features"))
	}

	if err := l.finish("Lasso", d, w); err != nil {
		return err
	}
	l.SetFitted(nFeatures, nSamples)
	return nil
}

// Predict returns X·w + b.
func (l *Lasso) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := l.RequireFitted("Lasso", "Predict"); err != nil {
		return nil, err
	}
	if err := l.RequireFeatures("Lasso.Predict", X); err != nil {
		return nil, err
	}
	return l.predict(X), nil
}

// Score returns the coefficient of determination R² of the prediction.
func (l *Lasso) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yPred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, yPred)
}

// NonZero returns the number of non-zero coefficients.
func (l *Lasso) NonZero() int {
	count := 0
	for _, v := range l.Weights {
		if v != 0 {
			count++
		}
	}
	return count
}

// GetParams returns the parameters of the model.
func (l *Lasso) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         l.Alpha,
		"max_iter":      l.MaxIter,
		"tol":           l.Tol,
		"fit_intercept": l.FitIntercept,
	}
}
