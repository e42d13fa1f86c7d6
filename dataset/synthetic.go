package dataset

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// SyntheticOptions configures MakeRegression.
type SyntheticOptions struct {
	NSamples  int
	NFeatures int

	// NInformative is the number of features with a non-zero ground-truth coefficient.
	// Zero means min(NFeatures, 10).
	NInformative int

	// Noise is the standard deviation of the Gaussian noise added to the target.
	Noise float64
	Bias  float64
	Seed  uint64
}

// MakeRegression generates a regression problem with a known linear ground truth:
// X ~ N(0, 1), informative coefficients drawn from 100·U(0, 1) on a random subset of
// columns, and y = X·coef + Bias + Noise·N(0, 1). The same options always produce the same
// data. The ground-truth coefficients are returned alongside the dataset.
func MakeRegression(opts SyntheticOptions) (*Dataset, []float64, error) {
	if opts.NSamples < 1 {
		return nil, nil, errors.NewValidationError("n_samples", "must be positive", opts.NSamples)
	}
	if opts.NFeatures < 1 {
		return nil, nil, errors.NewValidationError("n_features", "must be positive", opts.NFeatures)
	}
	if opts.Noise < 0 {
		return nil, nil, errors.NewValidationError("noise", "must not be negative", opts.Noise)
	}
	nInformative := opts.NInformative
	if nInformative <= 0 {
		nInformative = min(opts.NFeatures, 10)
	}
	nInformative = min(nInformative, opts.NFeatures)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	X := mat.NewDense(opts.NSamples, opts.NFeatures, nil)
	for i := 0; i < opts.NSamples; i++ {
		for j := 0; j < opts.NFeatures; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
	}

	coef := make([]float64, opts.NFeatures)
	for _, j := range rng.Perm(opts.NFeatures)[:nInformative] {
		coef[j] = 100 * rng.Float64()
	}

	y := mat.NewVecDense(opts.NSamples, nil)
	y.MulVec(X, mat.NewVecDense(opts.NFeatures, coef))
	for i := 0; i < opts.NSamples; i++ {
		v := y.AtVec(i) + opts.Bias
		if opts.Noise > 0 {
			v += opts.Noise * rng.NormFloat64()
		}
		y.SetVec(i, v)
	}

	names := make([]string, opts.NFeatures)
	for j := range names {
		names[j] = fmt.Sprintf("feature_%d", j)
	}
	return &Dataset{X: X, Y: y, FeatureNames: names}, coef, nil
}
