// Package evaluation scores fitted models on held-out data: the metrics record, K-fold
// cross-validation, diagnostic plots and record persistence.
package evaluation

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
)

// Metric names used as Record keys.
const (
	MetricMSE               = "mse"
	MetricRMSE              = "rmse"
	MetricMAE               = "mae"
	MetricMAPE              = "mape"
	MetricR2                = "r2_score"
	MetricResidualsMean     = "residuals_mean"
	MetricResidualsStd      = "residuals_std"
	MetricResidualsMin      = "residuals_min"
	MetricResidualsMax      = "residuals_max"
	MetricMaxResidual       = "max_residual"
	MetricExplainedVariance = "explained_variance"
)

// Record is the outcome of one evaluation. Treat it as immutable; WithCV returns a copy.
type Record struct {
	Metrics map[string]float64 `json:"metrics" yaml:"metrics"`

	// CV is set when cross-validation ran.
	CV *CVSummary `json:"cross_validation,omitempty" yaml:"cross_validation,omitempty"`
}

// Get returns the named metric and whether it is present. mape is absent when every
// actual value was zero.
func (r *Record) Get(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Names returns the metric names in sorted order.
func (r *Record) Names() []string {
	names := make([]string, 0, len(r.Metrics))
	for k := range r.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// WithCV returns a copy of r carrying cv.
func (r *Record) WithCV(cv *CVSummary) *Record {
	m := make(map[string]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		m[k] = v
	}
	return &Record{Metrics: m, CV: cv}
}

// Evaluate predicts XTest with m and scores the predictions against yTest.
//
// An undefined MAPE (all actual values zero) is reported through errors.Warn and left
// out of the record; it does not fail the evaluation.
func Evaluate(m model.Predictor, XTest mat.Matrix, yTest mat.Vector) (*Record, error) {
	yPred, err := m.Predict(XTest)
	if err != nil {
		return nil, errors.Wrap(err, "evaluation: predict failed")
	}

	mse, err := metrics.MSE(yTest, yPred)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSE(yTest, yPred)
	if err != nil {
		return nil, err
	}
	mae, err := metrics.MAE(yTest, yPred)
	if err != nil {
		return nil, err
	}
	r2, err := metrics.R2Score(yTest, yPred)
	if err != nil {
		return nil, err
	}
	ev, err := metrics.ExplainedVarianceScore(yTest, yPred)
	if err != nil {
		return nil, err
	}
	res, err := metrics.Residuals(yTest, yPred)
	if err != nil {
		return nil, err
	}

	values := map[string]float64{
		MetricMSE:               mse,
		MetricRMSE:              rmse,
		MetricMAE:               mae,
		MetricR2:                r2,
		MetricResidualsMean:     res.Mean,
		MetricResidualsStd:      res.Std,
		MetricResidualsMin:      res.Min,
		MetricResidualsMax:      res.Max,
		MetricMaxResidual:       res.MaxAbs,
		MetricExplainedVariance: ev,
	}

	mape, err := metrics.MAPE(yTest, yPred)
	var undefined *errors.UndefinedMetricWarning
	switch {
	case errors.As(err, &undefined):
		errors.Warn(undefined)
	case err != nil:
		return nil, err
	default:
		values[MetricMAPE] = mape
	}

	rec := &Record{Metrics: values}
	for _, name := range rec.Names() {
		if err := errors.CheckScalar("evaluation."+name, values[name]); err != nil {
			return nil, err
		}
	}

	log.GetLoggerWithName("evaluation").Info("Model evaluated",
		log.OperationKey, log.OperationScore,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, yTest.Len(),
		log.R2ScoreKey, r2,
		log.RMSEKey, rmse,
		log.MAEKey, mae,
	)
	return rec, nil
}
