// Package regpipe is a regression training and evaluation pipeline built on gonum.
//
// A run generates or loads a tabular dataset, splits it, optionally removes training
// outliers and standardizes the features, trains one of four models (ordinary least
// squares, polynomial regression, ridge or lasso), evaluates it on the held-out split and
// stores the fitted model, a metrics record and diagnostic plots. Named experiments run
// several such configurations and write a comparison table and a summary.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/regpipe/config"
//	    "github.com/YuminosukeSato/regpipe/dataset"
//	    "github.com/YuminosukeSato/regpipe/evaluation"
//	    "github.com/YuminosukeSato/regpipe/trainer"
//	)
//
//	func main() {
//	    cfg := config.Default()
//	    split, err := dataset.Prepare(dataset.OptionsFromConfig(cfg))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    p, trainR2, err := trainer.TrainModel(split.XTrain, split.YTrain, "ridge",
//	        map[string]any{"alpha": 0.5})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    rec, err := evaluation.Evaluate(p, split.XTest, split.YTest)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(trainR2, rec.Metrics["r2_score"])
//	}
//
// # Packages
//
//   - config: environment-driven configuration
//   - dataset: synthetic and CSV data, splitting, outliers, .npy persistence
//   - preprocessing: StandardScaler and PolynomialFeatures
//   - linear: LinearRegression, Ridge and Lasso estimators
//   - trainer: model specifications, the fitted Pipeline and its persistence
//   - metrics: regression metrics
//   - evaluation: metrics record, cross-validation and plots
//   - experiment: named experiments, hyperparameter grids and run summaries
//   - remote: Azure Machine Learning job submission
//   - core/model, core/parallel: estimator contracts and row parallelism
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// The regpipe command in cmd/regpipe wraps the pipeline; see its documentation for the
// run and experiment subcommands.
package regpipe
