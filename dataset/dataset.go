// Package dataset produces the train/test partitions the trainer consumes: synthetic
// generation or CSV loading, seeded splitting, outlier removal on the training partition,
// standardization and split persistence.
package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// Dataset is a feature matrix (rows are samples) and its target vector.
type Dataset struct {
	X *mat.Dense
	Y *mat.VecDense

	// FeatureNames has one entry per column of X. It may be nil.
	FeatureNames []string
}

// NewDataset wraps X and y, checking that their row counts match.
func NewDataset(X *mat.Dense, y *mat.VecDense, featureNames []string) (*Dataset, error) {
	r, c := X.Dims()
	if y.Len() != r {
		return nil, errors.NewDataFormatError("dataset",
			fmt.Sprintf("feature matrix has %d rows but target has %d values", r, y.Len()))
	}
	if featureNames != nil && len(featureNames) != c {
		return nil, errors.NewDataFormatError("dataset",
			fmt.Sprintf("%d feature names for %d columns", len(featureNames), c))
	}
	return &Dataset{X: X, Y: y, FeatureNames: featureNames}, nil
}

// Dims returns the number of samples and features.
func (d *Dataset) Dims() (nSamples, nFeatures int) {
	return d.X.Dims()
}

// Validate reports a DataFormatError naming the first NaN or Inf value in d.
func (d *Dataset) Validate(source string) error {
	r, c := d.X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := d.X.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewDataFormatError(source,
					fmt.Sprintf("non-finite feature value %v at row %d, column %d", v, i, j))
			}
		}
		if v := d.Y.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewDataFormatError(source,
				fmt.Sprintf("non-finite target value %v at row %d", v, i))
		}
	}
	return nil
}

// subset returns the rows of d listed in idx, in that order.
func (d *Dataset) subset(idx []int) *Dataset {
	_, c := d.X.Dims()
	X := mat.NewDense(len(idx), c, nil)
	y := mat.NewVecDense(len(idx), nil)
	for k, i := range idx {
		X.SetRow(k, d.X.RawRowView(i))
		y.SetVec(k, d.Y.AtVec(i))
	}
	return &Dataset{X: X, Y: y, FeatureNames: d.FeatureNames}
}
