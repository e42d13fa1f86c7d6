package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func TestSaveLoadSplit(t *testing.T) {
	split, err := Prepare(defaultOptions())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, SaveSplit(split, dir))
	for _, name := range []string{XTrainFile, XTestFile, YTrainFile, YTestFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := LoadSplit(dir)
	require.NoError(t, err)
	assert.True(t, mat.Equal(split.XTrain, loaded.XTrain))
	assert.True(t, mat.Equal(split.XTest, loaded.XTest))
	assert.Equal(t, split.YTrain.RawVector().Data, loaded.YTrain.RawVector().Data)
	assert.Equal(t, split.YTest.RawVector().Data, loaded.YTest.RawVector().Data)
	assert.Nil(t, loaded.Scaler)
}

func TestLoadSplitMismatch(t *testing.T) {
	split, err := Prepare(defaultOptions())
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, SaveSplit(split, dir))

	// overwrite y_test with a shorter vector
	require.NoError(t, writeNpy(filepath.Join(dir, YTestFile), []float64{1, 2}))
	_, err = LoadSplit(dir)
	var dfErr *errors.DataFormatError
	assert.True(t, errors.As(err, &dfErr))

	require.NoError(t, os.Remove(filepath.Join(dir, XTrainFile)))
	_, err = LoadSplit(dir)
	assert.Error(t, err)
}
