package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/pkg/log"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "regpipe",
	Short: "regression training and evaluation pipeline",
	Long: `
Generates or loads a tabular dataset, trains a linear, polynomial, ridge or lasso
regression model, evaluates it and stores the model, metrics and plots.
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if err := log.SetupLogger(os.Stderr, c.LogLevel, c.LogFormat); err != nil {
		return err
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		c.Model.Type = model
	}
	cfg = c
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd, experimentCmd)
}
