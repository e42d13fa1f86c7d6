package model

import "gonum.org/v1/gonum/mat"

// Fitter is implemented by estimators that learn from a feature matrix and a target vector.
type Fitter interface {
	Fit(X mat.Matrix, y mat.Vector) error
}

// Predictor is implemented by fitted estimators.
type Predictor interface {
	// Predict returns one prediction per row of X.
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// LinearModel exposes the learned parameters of a linear estimator.
type LinearModel interface {
	// Coef returns a copy of the learned coefficients, one per input feature.
	Coef() []float64
	// Intercept returns the learned bias term (0 when the intercept is not fitted).
	Intercept() float64
}
