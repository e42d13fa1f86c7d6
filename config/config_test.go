package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "linear", cfg.Model.Type)
	assert.Equal(t, 100, cfg.Data.NSamples)
	assert.Equal(t, uint64(42), cfg.Data.RandomState)
	assert.Equal(t, "cpu-cluster", cfg.Azure.ComputeCluster)
	assert.Equal(t, "./models", cfg.Paths.Models)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MODEL_TYPE", "ridge")
	t.Setenv("RIDGE_ALPHA", "0.5")
	t.Setenv("N_SAMPLES", "250")
	t.Setenv("SCALING", "false")
	t.Setenv("AZURE_SUBSCRIPTION_ID", "sub-123")
	t.Setenv("REMOTE_COMMAND", "python -m regpipe_job")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ridge", cfg.Model.Type)
	assert.Equal(t, 0.5, cfg.Model.RidgeAlpha)
	assert.Equal(t, 250, cfg.Data.NSamples)
	assert.False(t, cfg.Data.Scaling)
	assert.Equal(t, "sub-123", cfg.Azure.SubscriptionID)
	assert.Equal(t, "python -m regpipe_job", cfg.Azure.Command)
	assert.Equal(t, map[string]any{"fit_intercept": true, "alpha": 0.5}, cfg.ModelParams())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		setting string
	}{
		{"unparsable int", "N_SAMPLES", "many", "N_SAMPLES"},
		{"test size out of range", "TEST_SIZE", "1.5", "TEST_SIZE"},
		{"negative noise", "NOISE", "-1", "NOISE"},
		{"single fold", "CV_FOLDS", "1", "CV_FOLDS"},
		{"unknown log level", "LOG_LEVEL", "chatty", "LOG_LEVEL"},
		{"unknown log format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"file mode without path", "USE_SYNTHETIC", "false", "DATA_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			var cfgErr *errors.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %T: %v", err, err)
			assert.Equal(t, tt.setting, cfgErr.Setting)
		})
	}
}

func TestRequireAzure(t *testing.T) {
	cfg := Default()
	var cfgErr *errors.ConfigurationError
	require.True(t, errors.As(cfg.RequireAzure(), &cfgErr))
	assert.Equal(t, "AZURE_SUBSCRIPTION_ID", cfgErr.Setting)

	cfg.Azure.SubscriptionID = "sub"
	cfg.Azure.ResourceGroup = "rg"
	cfg.Azure.WorkspaceName = "ws"
	assert.NoError(t, cfg.RequireAzure())
}

func TestModelParams(t *testing.T) {
	cfg := Default()
	cfg.Model.Type = "lasso"
	params := cfg.ModelParams()
	assert.Equal(t, 0.1, params["alpha"])
	assert.Equal(t, 1000, params["max_iter"])
	assert.Equal(t, 1e-4, params["tol"])

	cfg.Model.Type = "polynomial"
	assert.Equal(t, 2, cfg.ModelParams()["degree"])
}
