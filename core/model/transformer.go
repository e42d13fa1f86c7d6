package model

import "gonum.org/v1/gonum/mat"

// Transformer is a stateful feature transform.
type Transformer interface {
	// Fit learns the transform parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transform to X.
	Transform(X mat.Matrix) (*mat.Dense, error)

	// FitTransform is Fit followed by Transform on the same data.
	FitTransform(X mat.Matrix) (*mat.Dense, error)
}
