// Command regpipe trains, evaluates and compares regression models.
//
//	regpipe run                 train and evaluate the model selected by MODEL_TYPE
//	regpipe run --remote        submit the same run to Azure Machine Learning
//	regpipe experiment <name>   run a named experiment ("all" runs every one)
//	regpipe experiment list     list the available experiments
//
// Settings come from environment variables; see the config package.
package main

import (
	"os"

	"github.com/YuminosukeSato/regpipe/pkg/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.GetLogger().Error("Command failed", err)
		os.Exit(1)
	}
}
