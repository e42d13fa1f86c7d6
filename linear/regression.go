package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// rankTol is the relative size below which a column norm, a diagonal entry of R or a
// singular value counts as zero.
const rankTol = 1e-10

// LinearRegression is ordinary least squares on the centered design matrix. Rank
// deficient designs get the minimum-norm solution; a constant feature is a FitError.
type LinearRegression struct {
	*model.StateManager
	Params

	FitIntercept bool
	Positive     bool
}

// NewLinearRegression creates a LinearRegression. It accepts WithFitIntercept and
// WithPositive.
func NewLinearRegression(opts ...Option) *LinearRegression {
	s := applyOptions(settings{fitIntercept: true}, opts)
	return &LinearRegression{
		StateManager: model.NewStateManager(),
		FitIntercept: s.fitIntercept,
		Positive:     s.positive,
	}
}

// Fit trains the model on X (n_samples × n_features) and y.
func (lr *LinearRegression) Fit(X mat.Matrix, y mat.Vector) error {
	nSamples, nFeatures, err := validateXY("LinearRegression.Fit", X, y)
	if err != nil {
		return err
	}

	d := center(X, y, lr.FitIntercept)
	var w []float64
	if lr.Positive {
		w, err = solveNonNegative(d.X, d.y)
	} else {
		w, err = solveLeastSquares(d.X, d.y)
	}
	if err != nil {
		return err
	}
	if err := lr.finish("LinearRegression", d, w); err != nil {
		return err
	}

	lr.SetFitted(nFeatures, nSamples)
	return nil
}

// solveLeastSquares solves min ||Xw - y||². A full column rank design is solved by
// Householder QR. Collinear columns, or fewer samples than features, fall back to the
// minimum-norm solution from the SVD. A zero-variance column is a FitError.
func solveLeastSquares(X *mat.Dense, y *mat.VecDense) ([]float64, error) {
	r, c := X.Dims()
	if err := checkZeroVariance(X); err != nil {
		return nil, err
	}
	if r >= c {
		if w, ok := solveQR(X, y); ok {
			return w, nil
		}
	}
	return solveMinNorm(X, y)
}

// checkZeroVariance reports a column of X whose norm vanishes. Columns are centered
// when the intercept is fitted, so a constant feature shows up here.
func checkZeroVariance(X *mat.Dense) error {
	_, c := X.Dims()
	norms := make([]float64, c)
	for j := range norms {
		norms[j] = mat.Norm(X.ColView(j), 2)
	}
	maxNorm := floats.Max(norms)
	for j, v := range norms {
		if maxNorm == 0 || v <= rankTol*maxNorm {
			return errors.NewFitError("LinearRegression",
				fmt.Sprintf("rank deficient design: feature %d has zero variance", j), errors.ErrSingularMatrix)
		}
	}
	return nil
}

// solveQR returns false when R has a negligible diagonal entry.
func solveQR(X *mat.Dense, y *mat.VecDense) ([]float64, bool) {
	_, c := X.Dims()

	var qr mat.QR
	qr.Factorize(X)

	var R mat.Dense
	qr.RTo(&R)
	diag := make([]float64, c)
	for j := range diag {
		diag[j] = math.Abs(R.At(j, j))
	}
	maxDiag := floats.Max(diag)
	for _, v := range diag {
		if v <= rankTol*maxDiag {
			return nil, false
		}
	}

	w := mat.NewVecDense(c, nil)
	if err := qr.SolveVecTo(w, false, y); err != nil {
		return nil, false
	}
	return w.RawVector().Data, true
}

// solveMinNorm returns the least squares solution of smallest Euclidean norm.
func solveMinNorm(X *mat.Dense, y *mat.VecDense) ([]float64, error) {
	_, c := X.Dims()

	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDThin) {
		return nil, errors.NewFitError("LinearRegression", "singular value decomposition failed", errors.ErrSingularMatrix)
	}
	rank := svd.Rank(rankTol)
	if rank == 0 {
		return nil, errors.NewFitError("LinearRegression", "rank deficient design: rank 0", errors.ErrSingularMatrix)
	}

	w := mat.NewVecDense(c, nil)
	svd.SolveVecTo(w, y, rank)
	return w.RawVector().Data, nil
}

// solveNonNegative minimizes ||Xw - y||² subject to w >= 0 by cyclic coordinate descent.
func solveNonNegative(X *mat.Dense, y *mat.VecDense) ([]float64, error) {
	const (
		maxIter = 1000
		tol     = 1e-10
	)
	_, c := X.Dims()

	colNorm := make([]float64, c)
	for j := range colNorm {
		col := X.ColView(j)
		colNorm[j] = mat.Dot(col, col)
		if colNorm[j] == 0 {
			return nil, errors.NewFitError("LinearRegression",
				fmt.Sprintf("rank deficient design: feature %d is constant", j), errors.ErrSingularMatrix)
		}
	}

	w := make([]float64, c)
	residual := mat.VecDenseCopyOf(y)
	for iter := 0; iter < maxIter; iter++ {
		maxDelta, maxW := 0.0, 0.0
		for j := 0; j < c; j++ {
			col := X.ColView(j)
			next := math.Max(0, w[j]+mat.Dot(col, residual)/colNorm[j])
			delta := next - w[j]
			if delta != 0 {
				residual.AddScaledVec(residual, -delta, col)
				w[j] = next
			}
			maxDelta = math.Max(maxDelta, math.Abs(delta))
			maxW = math.Max(maxW, math.Abs(w[j]))
		}
		if maxDelta <= tol*math.Max(1, maxW) {
			return w, nil
		}
	}
	errors.Warn(errors.NewConvergenceWarning("LinearRegression(positive)", maxIter, ""))
	return w, nil
}

// Predict returns X·w + b.
func (lr *LinearRegression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	if err := lr.RequireFeatures("LinearRegression.Predict", X); err != nil {
		return nil, err
	}
	return lr.predict(X), nil
}

// Score returns the coefficient of determination R² of the prediction.
func (lr *LinearRegression) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, yPred)
}

// GetParams returns the parameters of the model.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.FitIntercept,
		"positive":      lr.Positive,
	}
}
