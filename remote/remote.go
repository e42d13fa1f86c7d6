// Package remote hands training runs to Azure Machine Learning. Submission is
// fire-and-forget: the caller gets the job id and its initial status.
package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/regpipe/config"
)

// Job describes a command job to run on a remote compute target.
type Job struct {
	// Name is the job id within the workspace. Submitters generate one when empty.
	Name           string
	DisplayName    string
	ExperimentName string
	Description    string

	Command     string
	Environment string
	Compute     string

	EnvironmentVariables map[string]string
	Tags                 map[string]string
}

// JobStatus is what a Submitter knows about a job right after submission.
type JobStatus struct {
	ID        string
	Name      string
	Status    string
	StudioURL string
}

// Submitter submits jobs for remote execution.
type Submitter interface {
	Submit(ctx context.Context, job Job) (JobStatus, error)
}

// DefaultCommand is run by a job built by JobFromConfig when REMOTE_COMMAND is empty.
const DefaultCommand = "regpipe run"

// JobFromConfig describes a remote run of cfg.Azure.Command with the data and model
// settings of cfg passed as environment variables, so the remote run reproduces the
// local one.
func JobFromConfig(cfg *config.Config) Job {
	command := cfg.Azure.Command
	if command == "" {
		command = DefaultCommand
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	env := map[string]string{
		"MODEL_TYPE":        cfg.Model.Type,
		"FIT_INTERCEPT":     strconv.FormatBool(cfg.Model.FitIntercept),
		"POLY_DEGREE":       strconv.Itoa(cfg.Model.PolyDegree),
		"RIDGE_ALPHA":       f(cfg.Model.RidgeAlpha),
		"LASSO_ALPHA":       f(cfg.Model.LassoAlpha),
		"LASSO_MAX_ITER":    strconv.Itoa(cfg.Model.LassoMaxIter),
		"LASSO_TOL":         f(cfg.Model.LassoTol),
		"CV_FOLDS":          strconv.Itoa(cfg.Model.CVFolds),
		"N_SAMPLES":         strconv.Itoa(cfg.Data.NSamples),
		"N_FEATURES":        strconv.Itoa(cfg.Data.NFeatures),
		"NOISE":             f(cfg.Data.Noise),
		"TEST_SIZE":         f(cfg.Data.TestSize),
		"RANDOM_STATE":      strconv.FormatUint(cfg.Data.RandomState, 10),
		"USE_SYNTHETIC":     strconv.FormatBool(cfg.Data.UseSynthetic),
		"SCALING":           strconv.FormatBool(cfg.Data.Scaling),
		"REMOVE_OUTLIERS":   strconv.FormatBool(cfg.Data.RemoveOutliers),
		"OUTLIER_THRESHOLD": f(cfg.Data.OutlierThreshold),
		"LOG_LEVEL":         cfg.LogLevel,
	}
	if cfg.Data.DataPath != "" {
		env["DATA_PATH"] = cfg.Data.DataPath
		env["TARGET_COLUMN"] = cfg.Data.TargetColumn
	}

	return Job{
		DisplayName:          fmt.Sprintf("regpipe-%s", strings.ToLower(cfg.Model.Type)),
		ExperimentName:       "regpipe",
		Description:          fmt.Sprintf("%s regression pipeline", cfg.Model.Type),
		Command:              command,
		Environment:          cfg.Azure.Environment,
		Compute:              cfg.Azure.ComputeCluster,
		EnvironmentVariables: env,
		Tags:                 map[string]string{"model_type": cfg.Model.Type},
	}
}
