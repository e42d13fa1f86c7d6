package dataset

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func defaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

func TestPrepareSynthetic(t *testing.T) {
	split, err := Prepare(defaultOptions())
	require.NoError(t, err)

	nTrain, nFeatures := split.XTrain.Dims()
	nTest, _ := split.XTest.Dims()
	assert.Equal(t, 80, nTrain)
	assert.Equal(t, 20, nTest)
	assert.Equal(t, 10, nFeatures)
	assert.Equal(t, nTrain, split.YTrain.Len())
	assert.Equal(t, nTest, split.YTest.Len())
	require.NotNil(t, split.Scaler)

	// training features are standardized with their own statistics
	col := make([]float64, nTrain)
	for j := 0; j < nFeatures; j++ {
		mat.Col(col, j, split.XTrain)
		mean, std := stat.PopMeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-9)
		assert.InDelta(t, 1, std, 1e-9)
	}
}

// The test partition must be scaled with the training mean and scale, not its own.
func TestPrepareNoLeakage(t *testing.T) {
	opts := defaultOptions()
	scaled, err := Prepare(opts)
	require.NoError(t, err)

	opts.Scale = false
	raw, err := Prepare(opts)
	require.NoError(t, err)
	assert.Nil(t, raw.Scaler)

	nTest, nFeatures := raw.XTest.Dims()
	for i := 0; i < nTest; i++ {
		for j := 0; j < nFeatures; j++ {
			want := (raw.XTest.At(i, j) - scaled.Scaler.Mean[j]) / scaled.Scaler.Scale[j]
			assert.InDelta(t, want, scaled.XTest.At(i, j), 1e-12)
		}
	}

	// the scaler statistics come from the raw training partition
	col := mat.Col(nil, 0, raw.XTrain)
	mean, std := stat.PopMeanStdDev(col, nil)
	assert.InDelta(t, mean, scaled.Scaler.Mean[0], 1e-12)
	assert.InDelta(t, std, scaled.Scaler.Scale[0], 1e-12)
}

func TestPrepareSameSeedSameSplit(t *testing.T) {
	a, err := Prepare(defaultOptions())
	require.NoError(t, err)
	b, err := Prepare(defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a.XTrain.RawMatrix().Data, b.XTrain.RawMatrix().Data)
	assert.Equal(t, a.YTest.RawVector().Data, b.YTest.RawVector().Data)
}

func TestPrepareRemovesTrainingOutliersOnly(t *testing.T) {
	opts := defaultOptions()
	opts.Synthetic.NSamples = 400
	opts.RemoveOutliers = true
	opts.OutlierThreshold = 2.0

	split, err := Prepare(opts)
	require.NoError(t, err)
	assert.Positive(t, split.OutliersRemoved)

	nTrain, _ := split.XTrain.Dims()
	nTest, _ := split.XTest.Dims()
	assert.Equal(t, 320-split.OutliersRemoved, nTrain)
	assert.Equal(t, nTrain, split.YTrain.Len())
	assert.Equal(t, 80, nTest)
}

func TestPrepareCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "x1,x2,target\n"
	for i := 0; i < 20; i++ {
		content += formatRow(float64(i), float64(i*i%7), float64(3*i+1))
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts := defaultOptions()
	opts.UseSynthetic = false
	opts.DataPath = path
	split, err := Prepare(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, split.FeatureNames)
	assert.Equal(t, 16, split.YTrain.Len())
	assert.Equal(t, 4, split.YTest.Len())

	opts.TargetColumn = "label"
	_, err = Prepare(opts)
	var dfErr *errors.DataFormatError
	assert.True(t, errors.As(err, &dfErr))
}

func TestPrepareRejectsNonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "x,target\n1,1\n2,2\n3,NaN\n4,4\n5,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts := defaultOptions()
	opts.UseSynthetic = false
	opts.DataPath = path
	opts.TestSize = 0.4
	_, err := Prepare(opts)
	var dfErr *errors.DataFormatError
	require.True(t, errors.As(err, &dfErr), "got %v", err)
	assert.Contains(t, dfErr.Reason, "non-finite")
}

func TestPrepareRequiresPathForFileMode(t *testing.T) {
	opts := defaultOptions()
	opts.UseSynthetic = false
	_, err := Prepare(opts)
	var cfgErr *errors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func formatRow(values ...float64) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(cells, ",") + "\n"
}
