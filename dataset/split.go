package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// TrainTestSplit shuffles the rows of d with seed and holds out ceil(testSize·n) of them.
// The same seed always yields the same partition.
func TrainTestSplit(d *Dataset, testSize float64, seed uint64) (train, test *Dataset, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	n, _ := d.Dims()
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return nil, nil, errors.NewValidationError("test_size",
			fmt.Sprintf("leaves no training rows out of %d samples", n), testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	return d.subset(perm[nTest:]), d.subset(perm[:nTest]), nil
}

// RemoveOutliers drops every row of d having a feature whose z-score (population standard
// deviation) reaches threshold in absolute value. Rows are removed from X and Y together.
// Constant features never flag a row. It returns the filtered dataset and the number of
// rows removed.
func RemoveOutliers(d *Dataset, threshold float64) (*Dataset, int, error) {
	if threshold <= 0 {
		return nil, 0, errors.NewValidationError("outlier_threshold", "must be positive", threshold)
	}
	n, c := d.Dims()

	means := make([]float64, c)
	stds := make([]float64, c)
	col := make([]float64, n)
	for j := 0; j < c; j++ {
		mat.Col(col, j, d.X)
		means[j], stds[j] = stat.PopMeanStdDev(col, nil)
	}

	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		outlier := false
		for j := 0; j < c && !outlier; j++ {
			if stds[j] == 0 {
				continue
			}
			outlier = math.Abs(d.X.At(i, j)-means[j])/stds[j] >= threshold
		}
		if !outlier {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, n, errors.NewDataFormatError("outlier removal",
			fmt.Sprintf("threshold %v removes every row", threshold))
	}
	return d.subset(keep), n - len(keep), nil
}
