package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/regpipe/experiment"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment [name|all]",
	Short: "run named experiments",
	Long: `
Runs one named experiment, or every experiment with "all", then prints a comparison
table and writes summary.json into a new run directory under EXPERIMENTS_PATH. Without
a name the comparison experiment runs.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExperiment,
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "list the available experiments",
	Args:  cobra.NoArgs,
	RunE:  runExperimentList,
}

var experimentGridCmd = &cobra.Command{
	Use:   "grid <model>",
	Short: "evaluate every hyperparameter set of a model kind",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentGrid,
}

var experimentFlags struct {
	definitions string
}

func init() {
	experimentCmd.PersistentFlags().StringVar(&experimentFlags.definitions, "definitions", "",
		"YAML file with additional experiment definitions")
	experimentCmd.AddCommand(experimentListCmd, experimentGridCmd)
}

func catalog() (*experiment.Catalog, error) {
	if experimentFlags.definitions == "" {
		return experiment.Builtin(), nil
	}
	return experiment.LoadDefinitions(experimentFlags.definitions)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	c, err := catalog()
	if err != nil {
		return err
	}
	r, err := experiment.NewRunner(cfg, c)
	if err != nil {
		return err
	}

	name := "comparison"
	if len(args) == 1 {
		name = args[0]
	}
	if strings.EqualFold(name, "all") {
		r.RunAll()
	} else if _, err := r.Run(name); err != nil {
		return err
	}
	return finishRun(cmd, r)
}

func runExperimentGrid(cmd *cobra.Command, args []string) error {
	r, err := experiment.NewRunner(cfg, nil)
	if err != nil {
		return err
	}
	if _, err := r.Grid(args[0]); err != nil {
		return err
	}
	return finishRun(cmd, r)
}

func finishRun(cmd *cobra.Command, r *experiment.Runner) error {
	out := cmd.OutOrStdout()
	r.Compare(out)
	path, err := r.SaveSummary()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Summary: %s\n", path)

	for _, res := range r.Results() {
		if res.Failed() {
			return errors.Newf("experiment %s failed, see %s", res.Experiment, path)
		}
	}
	return nil
}

func runExperimentList(cmd *cobra.Command, _ []string) error {
	c, err := catalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available experiments:")
	for _, name := range c.Names() {
		d, _ := c.Get(name)
		model := d.ModelType
		if len(d.Models) > 0 {
			model = strings.Join(d.Models, ", ")
		}
		fmt.Fprintf(out, "  - %-12s %s (%s)\n", name, d.Name, model)
	}
	return nil
}
