package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/dataset"
	"github.com/YuminosukeSato/regpipe/evaluation"
	"github.com/YuminosukeSato/regpipe/pkg/log"
	"github.com/YuminosukeSato/regpipe/remote"
	"github.com/YuminosukeSato/regpipe/trainer"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "train and evaluate one model",
	Long: `
Runs the pipeline once: prepare data, train the model selected by MODEL_TYPE, evaluate
it on the test split and write the model, metrics and plots. With --remote the run is
submitted to Azure Machine Learning instead and the command returns the job id.
`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runFlags struct {
	remote  bool
	noPlots bool
	timeout time.Duration
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.remote, "remote", false, "submit the run to Azure Machine Learning")
	f.BoolVar(&runFlags.noPlots, "no-plots", false, "skip the prediction and residual plots")
	f.DurationVar(&runFlags.timeout, "timeout", 2*time.Minute, "time limit for remote submission")
	f.String("model", "", "override MODEL_TYPE")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if runFlags.remote {
		return runRemote(cmd.Context(), cmd.OutOrStdout())
	}
	_, err := runLocal(cfg, cmd.OutOrStdout(), !runFlags.noPlots)
	return err
}

func runRemote(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, runFlags.timeout)
	defer cancel()

	s, err := remote.NewAzureSubmitter(cfg)
	if err != nil {
		return err
	}
	status, err := s.Submit(ctx, remote.JobFromConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Job ID: %s\nStatus: %s\n", status.ID, status.Status)
	if status.StudioURL != "" {
		fmt.Fprintf(out, "Studio: %s\n", status.StudioURL)
	}
	return nil
}

// runArtifacts lists the files written by runLocal.
type runArtifacts struct {
	SplitDir        string
	ModelPath       string
	MetricsPath     string
	PredictionsPlot string
	ResidualsPlot   string
	Record          *evaluation.Record
	TrainScore      float64
}

func runLocal(c *config.Config, out io.Writer, plots bool) (*runArtifacts, error) {
	logger := log.GetLoggerWithName("pipeline").With(log.ModelTypeKey, c.Model.Type)
	stamp := time.Now().Format("20060102_150405")

	// fail on a bad model type before touching any data
	spec, err := trainer.ParseSpec(c.Model.Type, c.ModelParams())
	if err != nil {
		return nil, err
	}

	logger.Info("Preparing data", log.PhaseKey, log.PhasePreprocessing)
	split, err := dataset.Prepare(dataset.OptionsFromConfig(c))
	if err != nil {
		return nil, err
	}
	art := &runArtifacts{SplitDir: c.Paths.DataOutput}
	if err := dataset.SaveSplit(split, art.SplitDir); err != nil {
		return nil, err
	}

	logger.Info("Training model", log.PhaseKey, log.PhaseTraining)
	p, err := trainer.Train(split.XTrain, split.YTrain, spec)
	if err != nil {
		return nil, err
	}
	if art.TrainScore, err = p.Score(split.XTrain, split.YTrain); err != nil {
		return nil, err
	}

	logger.Info("Evaluating model", log.PhaseKey, log.PhaseTesting)
	rec, err := evaluation.Evaluate(p, split.XTest, split.YTest)
	if err != nil {
		return nil, err
	}
	if c.Model.CVFolds >= 2 {
		cv, err := evaluation.CrossValidate(split.XTrain, split.YTrain, spec, c.Model.CVFolds, c.Data.RandomState)
		if err != nil {
			return nil, err
		}
		rec = rec.WithCV(cv)
	}
	art.Record = rec

	base := fmt.Sprintf("%s_%s", c.Model.Type, stamp)
	art.ModelPath = filepath.Join(c.Paths.Models, base+".gob")
	if err := trainer.SaveModel(p, art.ModelPath); err != nil {
		return nil, err
	}
	art.MetricsPath = filepath.Join(c.Paths.Metrics, base+"_metrics.json")
	if err := evaluation.SaveRecord(rec, art.MetricsPath); err != nil {
		return nil, err
	}

	if plots {
		yPred, err := p.Predict(split.XTest)
		if err != nil {
			return nil, err
		}
		art.PredictionsPlot = filepath.Join(c.Paths.Metrics, base+"_predictions.png")
		if err := evaluation.PlotPredictions(split.YTest, yPred, c.Model.Type, art.PredictionsPlot); err != nil {
			return nil, err
		}
		art.ResidualsPlot = filepath.Join(c.Paths.Metrics, base+"_residuals.png")
		if err := evaluation.PlotResidualDistribution(split.YTest, yPred, c.Model.Type, art.ResidualsPlot); err != nil {
			return nil, err
		}
	}

	printRecord(out, art.TrainScore, rec)
	logger.Info("Pipeline completed", log.PathKey, art.ModelPath)
	return art, nil
}

func printRecord(out io.Writer, trainScore float64, rec *evaluation.Record) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{"train_r2", fmt.Sprintf("%.4f", trainScore)})
	for _, name := range rec.Names() {
		table.Append([]string{name, fmt.Sprintf("%.4f", rec.Metrics[name])})
	}
	if rec.CV != nil {
		table.Append([]string{"cv_r2_mean", fmt.Sprintf("%.4f", rec.CV.Mean)})
		table.Append([]string{"cv_r2_std", fmt.Sprintf("%.4f", rec.CV.Std)})
	}
	table.Render()
}
