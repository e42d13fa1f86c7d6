package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
	"github.com/YuminosukeSato/regpipe/preprocessing"
)

// Options controls Prepare.
type Options struct {
	// UseSynthetic selects MakeRegression over LoadCSV.
	UseSynthetic bool
	Synthetic    SyntheticOptions

	DataPath     string
	TargetColumn string

	TestSize float64
	Seed     uint64

	RemoveOutliers   bool
	OutlierThreshold float64

	Scale bool
}

// OptionsFromConfig builds Options from the data section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		UseSynthetic: cfg.Data.UseSynthetic,
		Synthetic: SyntheticOptions{
			NSamples:  cfg.Data.NSamples,
			NFeatures: cfg.Data.NFeatures,
			Noise:     cfg.Data.Noise,
			Seed:      cfg.Data.RandomState,
		},
		DataPath:         cfg.Data.DataPath,
		TargetColumn:     cfg.Data.TargetColumn,
		TestSize:         cfg.Data.TestSize,
		Seed:             cfg.Data.RandomState,
		RemoveOutliers:   cfg.Data.RemoveOutliers,
		OutlierThreshold: cfg.Data.OutlierThreshold,
		Scale:            cfg.Data.Scaling,
	}
}

// Split is a prepared train/test partition.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense

	FeatureNames []string

	// Scaler is the transform fitted on XTrain and applied to both partitions; nil when
	// scaling is disabled.
	Scaler *preprocessing.StandardScaler

	// OutliersRemoved counts the training rows dropped by outlier removal.
	OutliersRemoved int
}

// Prepare loads or generates the data, splits it, removes training outliers, standardizes
// both partitions with training statistics and validates the result.
func Prepare(opts Options) (*Split, error) {
	logger := log.GetLoggerWithName("dataset")

	var (
		data   *Dataset
		err    error
		source string
	)
	if opts.UseSynthetic {
		source = "synthetic"
		data, _, err = MakeRegression(opts.Synthetic)
	} else {
		source = opts.DataPath
		if opts.DataPath == "" {
			return nil, errors.NewConfigurationError("DATA_PATH", "required when synthetic data is disabled", "")
		}
		data, err = LoadCSV(opts.DataPath, opts.TargetColumn)
	}
	if err != nil {
		return nil, err
	}
	nSamples, nFeatures := data.Dims()
	logger.Info("Dataset loaded",
		log.PathKey, source,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.RandomSeedKey, opts.Seed,
		log.PhaseKey, log.PhasePreprocessing,
	)

	train, test, err := TrainTestSplit(data, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}

	removed := 0
	if opts.RemoveOutliers {
		train, removed, err = RemoveOutliers(train, opts.OutlierThreshold)
		if err != nil {
			return nil, err
		}
		logger.Info("Outliers removed", log.OutliersKey, removed)
	}

	split := &Split{
		XTrain:          train.X,
		XTest:           test.X,
		YTrain:          train.Y,
		YTest:           test.Y,
		FeatureNames:    data.FeatureNames,
		OutliersRemoved: removed,
	}

	if opts.Scale {
		split.Scaler = preprocessing.NewStandardScalerDefault()
		if split.XTrain, err = split.Scaler.FitTransform(train.X); err != nil {
			return nil, err
		}
		if split.XTest, err = split.Scaler.Transform(test.X); err != nil {
			return nil, err
		}
	}

	if err := (&Dataset{X: split.XTrain, Y: split.YTrain}).Validate(source + " (train)"); err != nil {
		return nil, err
	}
	if err := (&Dataset{X: split.XTest, Y: split.YTest}).Validate(source + " (test)"); err != nil {
		return nil, err
	}

	nTrain, _ := split.XTrain.Dims()
	nTest, _ := split.XTest.Dims()
	logger.Info("Data split",
		log.TrainSamplesKey, nTrain,
		log.TestSamplesKey, nTest,
		"scaled", opts.Scale,
	)
	return split, nil
}
