package dataset

import (
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// File names used by SaveSplit and LoadSplit.
const (
	XTrainFile = "X_train.npy"
	XTestFile  = "X_test.npy"
	YTrainFile = "y_train.npy"
	YTestFile  = "y_test.npy"
)

// SaveSplit writes the four partition arrays of s into dir as NumPy .npy files,
// creating dir when needed.
func SaveSplit(s *Split, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	items := []struct {
		name string
		val  interface{}
	}{
		{XTrainFile, s.XTrain},
		{XTestFile, s.XTest},
		{YTrainFile, s.YTrain.RawVector().Data},
		{YTestFile, s.YTest.RawVector().Data},
	}
	for _, item := range items {
		if err := writeNpy(filepath.Join(dir, item.name), item.val); err != nil {
			return err
		}
	}
	return nil
}

func writeNpy(path string, val interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	if err := npyio.Write(f, val); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

// LoadSplit reads a partition written by SaveSplit. The scaler is not persisted, so the
// returned Split has a nil Scaler.
func LoadSplit(dir string) (*Split, error) {
	var s Split
	var err error
	if s.XTrain, err = readMatrix(filepath.Join(dir, XTrainFile)); err != nil {
		return nil, err
	}
	if s.XTest, err = readMatrix(filepath.Join(dir, XTestFile)); err != nil {
		return nil, err
	}
	if s.YTrain, err = readVector(filepath.Join(dir, YTrainFile)); err != nil {
		return nil, err
	}
	if s.YTest, err = readVector(filepath.Join(dir, YTestFile)); err != nil {
		return nil, err
	}

	trainRows, trainCols := s.XTrain.Dims()
	testRows, testCols := s.XTest.Dims()
	switch {
	case trainRows != s.YTrain.Len():
		return nil, errors.NewDataFormatError(dir, "X_train and y_train row counts differ")
	case testRows != s.YTest.Len():
		return nil, errors.NewDataFormatError(dir, "X_test and y_test row counts differ")
	case trainCols != testCols:
		return nil, errors.NewDataFormatError(dir, "X_train and X_test column counts differ")
	}
	return &s, nil
}

func readMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, errors.NewDataFormatError(path, err.Error())
	}
	return &m, nil
}

func readVector(path string) (*mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var data []float64
	if err := npyio.Read(f, &data); err != nil {
		return nil, errors.NewDataFormatError(path, err.Error())
	}
	if len(data) == 0 {
		return nil, errors.NewDataFormatError(path, "empty array")
	}
	return mat.NewVecDense(len(data), data), nil
}
