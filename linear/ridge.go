package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// DefaultRidgeAlpha is the regularization strength used when none is given.
const DefaultRidgeAlpha = 1.0

// Ridge is least squares with an L2 penalty: it solves (XᵀX + αI)w = Xᵀy on the centered
// data. The intercept is not penalized.
type Ridge struct {
	*model.StateManager
	Params

	Alpha        float64
	FitIntercept bool
}

// NewRidge creates a Ridge estimator. It accepts WithAlpha and WithFitIntercept.
func NewRidge(opts ...Option) *Ridge {
	s := applyOptions(settings{fitIntercept: true, alpha: DefaultRidgeAlpha}, opts)
	return &Ridge{
		StateManager: model.NewStateManager(),
		Alpha:        s.alpha,
		FitIntercept: s.fitIntercept,
	}
}

// Fit trains the model on X and y.
func (r *Ridge) Fit(X mat.Matrix, y mat.Vector) error {
	if r.Alpha < 0 {
		return errors.NewValidationError("alpha", "must not be negative", r.Alpha)
	}
	nSamples, nFeatures, err := validateXY("Ridge.Fit", X, y)
	if err != nil {
		return err
	}

	d := center(X, y, r.FitIntercept)

	var gram mat.SymDense
	gram.SymOuterK(1, d.X.T())
	for j := 0; j < nFeatures; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.Alpha)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return errors.NewFitError("Ridge", "XᵀX + αI is not positive definite", errors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(d.X.T(), d.y)

	w := mat.NewVecDense(nFeatures, nil)
	if err := chol.SolveVecTo(w, &xty); err != nil {
		return errors.NewFitError("Ridge", "ill-conditioned system", errors.ErrSingularMatrix)
	}
	if err := r.finish("Ridge", d, w.RawVector().Data); err != nil {
		return err
	}

	r.SetFitted(nFeatures, nSamples)
	return nil
}

// Predict returns X·w + b.
func (r *Ridge) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := r.RequireFitted("Ridge", "Predict"); err != nil {
		return nil, err
	}
	if err := r.RequireFeatures("Ridge.Predict", X); err != nil {
		return nil, err
	}
	return r.predict(X), nil
}

// Score returns the coefficient of determination R² of the prediction.
func (r *Ridge) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, yPred)
}

// GetParams returns the parameters of the model.
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.Alpha,
		"fit_intercept": r.FitIntercept,
	}
}
