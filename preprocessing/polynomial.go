package preprocessing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/core/parallel"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// PolynomialFeatures expands each row into every monomial of the input features with
// total degree 1..Degree. No constant column is produced; the estimator fits the
// intercept. Output columns are ordered by degree, then lexicographically by feature
// index: for two features and degree 2 the columns are x0, x1, x0², x0·x1, x1².
type PolynomialFeatures struct {
	*model.StateManager

	Degree int

	// Powers[k][j] is the exponent of input feature j in output column k.
	Powers [][]int
}

var _ model.Transformer = (*PolynomialFeatures)(nil)

// NewPolynomialFeatures creates a PolynomialFeatures transform of the given degree.
func NewPolynomialFeatures(degree int) *PolynomialFeatures {
	return &PolynomialFeatures{
		StateManager: model.NewStateManager(),
		Degree:       degree,
	}
}

// Fit computes the output column layout for the column count of X.
func (p *PolynomialFeatures) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PolynomialFeatures.Fit", "empty data", errors.ErrEmptyData)
	}
	if p.Degree < 1 {
		return errors.NewValidationError("degree", "must be at least 1", p.Degree)
	}

	p.Powers = p.Powers[:0]
	for d := 1; d <= p.Degree; d++ {
		combinationsWithReplacement(c, d, func(idx []int) {
			powers := make([]int, c)
			for _, j := range idx {
				powers[j]++
			}
			p.Powers = append(p.Powers, powers)
		})
	}

	p.SetFitted(c, r)
	return nil
}

// NOutputFeatures returns the number of columns Transform produces.
func (p *PolynomialFeatures) NOutputFeatures() int {
	return len(p.Powers)
}

// Transform expands X into the fitted monomial columns.
func (p *PolynomialFeatures) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := p.RequireFitted("PolynomialFeatures", "Transform"); err != nil {
		return nil, err
	}
	if err := p.RequireFeatures("PolynomialFeatures.Transform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	result := mat.NewDense(r, len(p.Powers), nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		row := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			for k, powers := range p.Powers {
				v := 1.0
				for j, pow := range powers {
					for ; pow > 0; pow-- {
						v *= row[j]
					}
				}
				result.Set(i, k, v)
			}
		}
	})
	return result, nil
}

// FitTransform fits on X and returns the expanded matrix.
func (p *PolynomialFeatures) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// FeatureNames returns names for the output columns built from inputNames, e.g. "x0 x1^2".
// With nil inputNames the inputs are called x0, x1, ...
func (p *PolynomialFeatures) FeatureNames(inputNames []string) []string {
	names := make([]string, 0, len(p.Powers))
	for _, powers := range p.Powers {
		var terms []string
		for j, pow := range powers {
			if pow == 0 {
				continue
			}
			name := fmt.Sprintf("x%d", j)
			if j < len(inputNames) {
				name = inputNames[j]
			}
			if pow > 1 {
				name = fmt.Sprintf("%s^%d", name, pow)
			}
			terms = append(terms, name)
		}
		names = append(names, strings.Join(terms, " "))
	}
	return names
}

// GetParams returns the transform's parameters.
func (p *PolynomialFeatures) GetParams() map[string]interface{} {
	return map[string]interface{}{"degree": p.Degree}
}

// combinationsWithReplacement calls fn with every non-decreasing index tuple of length k
// over [0, n), in lexicographic order. fn must not retain idx.
func combinationsWithReplacement(n, k int, fn func(idx []int)) {
	idx := make([]int, k)
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-1 {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[i]
		}
	}
}
