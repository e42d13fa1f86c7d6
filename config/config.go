// Package config turns the process environment into an explicit Config value that the
// rest of the pipeline receives as a parameter.
package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
)

// Azure holds the workspace coordinates used by remote submission.
type Azure struct {
	SubscriptionID string `envconfig:"AZURE_SUBSCRIPTION_ID"`
	ResourceGroup  string `envconfig:"AZURE_RESOURCE_GROUP"`
	WorkspaceName  string `envconfig:"AZURE_WORKSPACE_NAME"`
	ComputeCluster string `envconfig:"COMPUTE_CLUSTER" default:"cpu-cluster"`
	Environment    string `envconfig:"AZURE_ENVIRONMENT" default:"AzureML-sklearn-1.0"`

	// Command is what a submitted job runs. The environment must provide it.
	Command string `envconfig:"REMOTE_COMMAND" default:"regpipe run"`
}

// Data controls dataset generation or loading and preparation.
type Data struct {
	NSamples         int     `envconfig:"N_SAMPLES" default:"100"`
	NFeatures        int     `envconfig:"N_FEATURES" default:"10"`
	Noise            float64 `envconfig:"NOISE" default:"0.1"`
	TestSize         float64 `envconfig:"TEST_SIZE" default:"0.2"`
	RandomState      uint64  `envconfig:"RANDOM_STATE" default:"42"`
	UseSynthetic     bool    `envconfig:"USE_SYNTHETIC" default:"true"`
	DataPath         string  `envconfig:"DATA_PATH"`
	TargetColumn     string  `envconfig:"TARGET_COLUMN" default:"target"`
	Scaling          bool    `envconfig:"SCALING" default:"true"`
	RemoveOutliers   bool    `envconfig:"REMOVE_OUTLIERS" default:"false"`
	OutlierThreshold float64 `envconfig:"OUTLIER_THRESHOLD" default:"3.0"`
}

// Model selects the estimator and its hyperparameters.
type Model struct {
	Type         string  `envconfig:"MODEL_TYPE" default:"linear"`
	FitIntercept bool    `envconfig:"FIT_INTERCEPT" default:"true"`
	PolyDegree   int     `envconfig:"POLY_DEGREE" default:"2"`
	RidgeAlpha   float64 `envconfig:"RIDGE_ALPHA" default:"1.0"`
	LassoAlpha   float64 `envconfig:"LASSO_ALPHA" default:"0.1"`
	LassoMaxIter int     `envconfig:"LASSO_MAX_ITER" default:"1000"`
	LassoTol     float64 `envconfig:"LASSO_TOL" default:"1e-4"`
	CVFolds      int     `envconfig:"CV_FOLDS" default:"5"`
}

// Paths are the output directories for artifacts.
type Paths struct {
	Models      string `envconfig:"MODELS_PATH" default:"./models"`
	Metrics     string `envconfig:"METRICS_PATH" default:"./metrics"`
	DataOutput  string `envconfig:"DATA_OUTPUT_PATH" default:"./data"`
	Experiments string `envconfig:"EXPERIMENTS_PATH" default:"./experiments"`
}

// Config is the complete pipeline configuration. The groups are embedded so envconfig
// reads their variables without a group prefix.
type Config struct {
	Azure
	Data
	Model
	Paths

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		var parseErr *envconfig.ParseError
		if errors.As(err, &parseErr) {
			return nil, errors.NewConfigurationError(parseErr.KeyName, "cannot parse as "+parseErr.TypeName, parseErr.Value)
		}
		return nil, errors.Wrap(err, "failed to load configuration from environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration that an empty environment produces.
func Default() *Config {
	return &Config{
		Azure: Azure{ComputeCluster: "cpu-cluster", Environment: "AzureML-sklearn-1.0", Command: "regpipe run"},
		Data: Data{
			NSamples: 100, NFeatures: 10, Noise: 0.1, TestSize: 0.2, RandomState: 42,
			UseSynthetic: true, TargetColumn: "target", Scaling: true, OutlierThreshold: 3.0,
		},
		Model: Model{
			Type: "linear", FitIntercept: true, PolyDegree: 2, RidgeAlpha: 1.0,
			LassoAlpha: 0.1, LassoMaxIter: 1000, LassoTol: 1e-4, CVFolds: 5,
		},
		Paths: Paths{
			Models: "./models", Metrics: "./metrics", DataOutput: "./data", Experiments: "./experiments",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Validate checks value ranges. It does not check the model type, which the trainer
// rejects with an UnsupportedModelError.
func (c *Config) Validate() error {
	switch {
	case c.Data.UseSynthetic && c.Data.NSamples < 2:
		return errors.NewConfigurationError("N_SAMPLES", "must be at least 2", c.Data.NSamples)
	case c.Data.UseSynthetic && c.Data.NFeatures < 1:
		return errors.NewConfigurationError("N_FEATURES", "must be positive", c.Data.NFeatures)
	case c.Data.Noise < 0:
		return errors.NewConfigurationError("NOISE", "must not be negative", c.Data.Noise)
	case c.Data.TestSize <= 0 || c.Data.TestSize >= 1:
		return errors.NewConfigurationError("TEST_SIZE", "must be in (0, 1)", c.Data.TestSize)
	case !c.Data.UseSynthetic && c.Data.DataPath == "":
		return errors.NewConfigurationError("DATA_PATH", "required when USE_SYNTHETIC is false", c.Data.DataPath)
	case c.Data.RemoveOutliers && c.Data.OutlierThreshold <= 0:
		return errors.NewConfigurationError("OUTLIER_THRESHOLD", "must be positive", c.Data.OutlierThreshold)
	case c.Model.PolyDegree < 1:
		return errors.NewConfigurationError("POLY_DEGREE", "must be at least 1", c.Model.PolyDegree)
	case c.Model.RidgeAlpha < 0:
		return errors.NewConfigurationError("RIDGE_ALPHA", "must not be negative", c.Model.RidgeAlpha)
	case c.Model.LassoAlpha < 0:
		return errors.NewConfigurationError("LASSO_ALPHA", "must not be negative", c.Model.LassoAlpha)
	case c.Model.LassoMaxIter < 1:
		return errors.NewConfigurationError("LASSO_MAX_ITER", "must be positive", c.Model.LassoMaxIter)
	case c.Model.LassoTol <= 0:
		return errors.NewConfigurationError("LASSO_TOL", "must be positive", c.Model.LassoTol)
	case c.Model.CVFolds != 0 && c.Model.CVFolds < 2:
		return errors.NewConfigurationError("CV_FOLDS", "must be 0 (disabled) or at least 2", c.Model.CVFolds)
	case c.LogFormat != "json" && c.LogFormat != "console":
		return errors.NewConfigurationError("LOG_FORMAT", "must be json or console", c.LogFormat)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// RequireAzure reports a ConfigurationError for the first missing workspace setting.
func (c *Config) RequireAzure() error {
	switch {
	case c.Azure.SubscriptionID == "":
		return errors.NewConfigurationError("AZURE_SUBSCRIPTION_ID", "required for remote execution", "")
	case c.Azure.ResourceGroup == "":
		return errors.NewConfigurationError("AZURE_RESOURCE_GROUP", "required for remote execution", "")
	case c.Azure.WorkspaceName == "":
		return errors.NewConfigurationError("AZURE_WORKSPACE_NAME", "required for remote execution", "")
	}
	return nil
}

// ModelParams returns the hyperparameter map for c.Model.Type, the form accepted by
// trainer.ParseSpec.
func (c *Config) ModelParams() map[string]any {
	params := map[string]any{"fit_intercept": c.Model.FitIntercept}
	switch c.Model.Type {
	case "polynomial":
		params["degree"] = c.Model.PolyDegree
	case "ridge":
		params["alpha"] = c.Model.RidgeAlpha
	case "lasso":
		params["alpha"] = c.Model.LassoAlpha
		params["max_iter"] = c.Model.LassoMaxIter
		params["tol"] = c.Model.LassoTol
	}
	return params
}
