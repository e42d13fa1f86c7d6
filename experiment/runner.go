package experiment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/dataset"
	"github.com/YuminosukeSato/regpipe/evaluation"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
	"github.com/YuminosukeSato/regpipe/trainer"
)

// SummaryFile is the name of the run summary written by SaveSummary.
const SummaryFile = "summary.json"

// ModelResult is the outcome of training and evaluating one model inside an experiment.
type ModelResult struct {
	ModelType   string                `json:"model_type"`
	Params      map[string]any        `json:"params"`
	TrainScore  float64               `json:"train_score"`
	Metrics     map[string]float64    `json:"metrics,omitempty"`
	CV          *evaluation.CVSummary `json:"cross_validation,omitempty"`
	ModelPath   string                `json:"model_path,omitempty"`
	MetricsPath string                `json:"metrics_path,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Result is the outcome of one experiment. Error is set when the experiment could not
// get as far as training, e.g. because its data could not be prepared.
type Result struct {
	Experiment   string        `json:"experiment"`
	Config       Definition    `json:"config"`
	TrainSamples int           `json:"train_samples,omitempty"`
	TestSamples  int           `json:"test_samples,omitempty"`
	Models       []ModelResult `json:"models,omitempty"`
	DurationMs   int64         `json:"duration_ms"`
	Error        string        `json:"error,omitempty"`
}

// Failed reports whether the experiment or any of its models failed.
func (r Result) Failed() bool {
	if r.Error != "" {
		return true
	}
	for _, m := range r.Models {
		if m.Error != "" {
			return true
		}
	}
	return false
}

// Summary is the content of summary.json.
type Summary struct {
	RunID       string            `json:"run_id"`
	Timestamp   string            `json:"timestamp"`
	ResultsDir  string            `json:"results_dir"`
	Experiments map[string]Result `json:"experiments"`
}

// Runner runs experiments and collects their results. Artifacts of one Runner go into a
// single run directory named after its start time and run id. A Runner is not safe for
// concurrent use.
type Runner struct {
	RunID     string
	Dir       string
	StartedAt time.Time

	cfg     *config.Config
	catalog *Catalog
	grid    HyperparameterGrid
	cvFolds int

	results []Result
	logger  log.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithGrid replaces the default hyperparameter grid.
func WithGrid(g HyperparameterGrid) RunnerOption {
	return func(r *Runner) { r.grid = g }
}

// WithCVFolds sets the number of cross-validation folds; below 2 disables
// cross-validation.
func WithCVFolds(k int) RunnerOption {
	return func(r *Runner) { r.cvFolds = k }
}

// NewRunner creates the run directory under cfg.Paths.Experiments and returns a Runner
// over catalog. A nil catalog means Builtin().
func NewRunner(cfg *config.Config, catalog *Catalog, opts ...RunnerOption) (*Runner, error) {
	if catalog == nil {
		catalog = Builtin()
	}
	r := &Runner{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		cfg:       cfg,
		catalog:   catalog,
		grid:      DefaultGrid(),
		cvFolds:   cfg.Model.CVFolds,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Dir = filepath.Join(cfg.Paths.Experiments, r.StartedAt.Format("20060102_150405")+"_"+r.RunID[:8])
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create run directory %s", r.Dir)
	}
	r.logger = log.GetLoggerWithName("experiment").With(log.RunIDKey, r.RunID)
	return r, nil
}

// Run runs the experiment stored under key. Only an unknown key is returned as an error;
// training failures are recorded in the Result.
func (r *Runner) Run(key string) (Result, error) {
	def, err := r.catalog.Get(key)
	if err != nil {
		return Result{}, err
	}
	specs, err := def.Specs()
	res := r.run(key, def, specs, err)
	r.results = append(r.results, res)
	return res, nil
}

// RunAll runs every experiment of the catalog in order. A failing experiment does not
// stop the others.
func (r *Runner) RunAll() []Result {
	r.logger.Info("Running all experiments", "count", len(r.catalog.Names()))
	out := make([]Result, 0, len(r.catalog.Names()))
	for _, key := range r.catalog.Names() {
		res, _ := r.Run(key)
		out = append(out, res)
	}
	return out
}

// Grid trains every grid point of kind on the data described by the runner's config and
// records the outcome as the experiment "grid_<kind>".
func (r *Runner) Grid(kind string) (Result, error) {
	specs, err := r.grid.Specs(kind)
	if err != nil {
		return Result{}, err
	}
	key := "grid_" + kind
	def := Definition{Name: key, ModelType: kind, Data: dataFromConfig(r.cfg)}
	res := r.run(key, def, specs, nil)
	r.results = append(r.results, res)
	return res, nil
}

// Results returns the results recorded so far.
func (r *Runner) Results() []Result {
	return append([]Result(nil), r.results...)
}

func dataFromConfig(cfg *config.Config) DataConfig {
	return DataConfig{
		UseSynthetic:     cfg.Data.UseSynthetic,
		NSamples:         cfg.Data.NSamples,
		NFeatures:        cfg.Data.NFeatures,
		Noise:            cfg.Data.Noise,
		TestSize:         cfg.Data.TestSize,
		RandomState:      cfg.Data.RandomState,
		Scale:            cfg.Data.Scaling,
		RemoveOutliers:   cfg.Data.RemoveOutliers,
		OutlierThreshold: cfg.Data.OutlierThreshold,
		DataPath:         cfg.Data.DataPath,
		TargetColumn:     cfg.Data.TargetColumn,
	}
}

func (r *Runner) run(key string, def Definition, specs []trainer.Spec, specErr error) Result {
	start := time.Now()
	res := Result{Experiment: key, Config: def}
	logger := r.logger.With(log.ExperimentKey, key)
	logger.Info("Starting experiment", "name", def.Name)

	finish := func(err error) Result {
		res.DurationMs = time.Since(start).Milliseconds()
		if err != nil {
			res.Error = err.Error()
			logger.Error("Experiment failed", err)
		} else {
			logger.Info("Experiment complete", log.DurationMsKey, res.DurationMs)
		}
		return res
	}
	if specErr != nil {
		return finish(specErr)
	}

	split, err := dataset.Prepare(def.Data.Options())
	if err != nil {
		return finish(err)
	}
	res.TrainSamples, _ = split.XTrain.Dims()
	res.TestSamples, _ = split.XTest.Dims()
	logger.Info("Data prepared",
		log.TrainSamplesKey, res.TrainSamples,
		log.TestSamplesKey, res.TestSamples,
	)

	for i, spec := range specs {
		name := fmt.Sprintf("%s_%s", key, spec.Kind())
		if len(specs) > 1 {
			name = fmt.Sprintf("%s_%d_%s", key, i, spec.Kind())
		}
		res.Models = append(res.Models, r.trainOne(logger, name, spec, split, def.Data.RandomState))
	}
	return finish(nil)
}

func (r *Runner) trainOne(logger log.Logger, name string, spec trainer.Spec, split *dataset.Split, seed uint64) ModelResult {
	mr := ModelResult{ModelType: string(spec.Kind()), Params: spec.Params()}
	fail := func(err error) ModelResult {
		mr.Error = err.Error()
		logger.Error("Model failed", err, log.ModelTypeKey, mr.ModelType)
		return mr
	}

	p, err := trainer.Train(split.XTrain, split.YTrain, spec)
	if err != nil {
		return fail(err)
	}
	if mr.TrainScore, err = p.Score(split.XTrain, split.YTrain); err != nil {
		return fail(err)
	}

	rec, err := evaluation.Evaluate(p, split.XTest, split.YTest)
	if err != nil {
		return fail(err)
	}
	if r.cvFolds >= 2 {
		cv, err := evaluation.CrossValidate(split.XTrain, split.YTrain, spec, r.cvFolds, seed)
		if err != nil {
			return fail(err)
		}
		rec = rec.WithCV(cv)
		mr.CV = cv
	}
	mr.Metrics = rec.Metrics

	mr.ModelPath = filepath.Join(r.Dir, name+".gob")
	if err := trainer.SaveModel(p, mr.ModelPath); err != nil {
		return fail(err)
	}
	mr.MetricsPath = filepath.Join(r.Dir, name+"_metrics.json")
	if err := evaluation.SaveRecord(rec, mr.MetricsPath); err != nil {
		return fail(err)
	}

	logger.Info("Model evaluated",
		log.ModelTypeKey, mr.ModelType,
		"train_score", mr.TrainScore,
		log.R2ScoreKey, rec.Metrics[evaluation.MetricR2],
		log.RMSEKey, rec.Metrics[evaluation.MetricRMSE],
	)
	return mr
}

func formatMetric(m map[string]float64, name string) string {
	v, ok := m[name]
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// Compare writes a table of every successful model to w and returns the number of rows.
// Failures are logged and left out of the table.
func (r *Runner) Compare(w io.Writer) int {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Experiment", "Model", "Train R²", "Test R²", "RMSE", "MAE", "MAPE", "CV R²"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	rows := 0
	for _, res := range r.results {
		if res.Error != "" {
			r.logger.Warn("Experiment skipped in comparison", log.ExperimentKey, res.Experiment, "error", res.Error)
			continue
		}
		for _, m := range res.Models {
			if m.Error != "" {
				r.logger.Warn("Model skipped in comparison",
					log.ExperimentKey, res.Experiment, log.ModelTypeKey, m.ModelType, "error", m.Error)
				continue
			}
			cv := "-"
			if m.CV != nil {
				cv = fmt.Sprintf("%.4f ± %.4f", m.CV.Mean, m.CV.Std)
			}
			table.Append([]string{
				res.Experiment,
				m.ModelType,
				fmt.Sprintf("%.4f", m.TrainScore),
				formatMetric(m.Metrics, evaluation.MetricR2),
				formatMetric(m.Metrics, evaluation.MetricRMSE),
				formatMetric(m.Metrics, evaluation.MetricMAE),
				formatMetric(m.Metrics, evaluation.MetricMAPE),
				cv,
			})
			rows++
		}
	}
	table.Render()
	return rows
}

// SaveSummary writes summary.json into the run directory and returns its path. An
// experiment run more than once is recorded with its last result.
func (r *Runner) SaveSummary() (string, error) {
	s := Summary{
		RunID:       r.RunID,
		Timestamp:   r.StartedAt.Format(time.RFC3339),
		ResultsDir:  r.Dir,
		Experiments: make(map[string]Result, len(r.results)),
	}
	for _, res := range r.results {
		s.Experiments[res.Experiment] = res
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode summary")
	}
	path := filepath.Join(r.Dir, SummaryFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	r.logger.Info("Summary saved", log.PathKey, path, "experiments", len(s.Experiments))
	return path, nil
}

// LoadSummary reads a summary.json written by SaveSummary.
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewDataFormatError(path, "not an experiment summary: "+err.Error())
	}
	return &s, nil
}
