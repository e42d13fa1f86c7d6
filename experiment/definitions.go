// Package experiment runs named training experiments, hyperparameter grids and model
// comparisons, and records their outcome in a per-run directory.
package experiment

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/regpipe/dataset"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/trainer"
)

// DataConfig selects and prepares the data of an experiment.
type DataConfig struct {
	UseSynthetic     bool    `yaml:"use_synthetic" json:"use_synthetic"`
	NSamples         int     `yaml:"n_samples" json:"n_samples"`
	NFeatures        int     `yaml:"n_features" json:"n_features"`
	Noise            float64 `yaml:"noise" json:"noise"`
	TestSize         float64 `yaml:"test_size" json:"test_size"`
	RandomState      uint64  `yaml:"random_state" json:"random_state"`
	Scale            bool    `yaml:"scale" json:"scale"`
	RemoveOutliers   bool    `yaml:"remove_outliers" json:"remove_outliers"`
	OutlierThreshold float64 `yaml:"outlier_threshold" json:"outlier_threshold"`
	DataPath         string  `yaml:"data_path,omitempty" json:"data_path,omitempty"`
	TargetColumn     string  `yaml:"target_column,omitempty" json:"target_column,omitempty"`
}

// DefaultDataConfig is the data section every definition starts from.
func DefaultDataConfig() DataConfig {
	return DataConfig{
		UseSynthetic:     true,
		NSamples:         100,
		NFeatures:        10,
		Noise:            0.1,
		TestSize:         0.2,
		RandomState:      42,
		Scale:            true,
		OutlierThreshold: 3.0,
		TargetColumn:     "target",
	}
}

// Options converts d into dataset.Options.
func (d DataConfig) Options() dataset.Options {
	return dataset.Options{
		UseSynthetic: d.UseSynthetic,
		Synthetic: dataset.SyntheticOptions{
			NSamples:  d.NSamples,
			NFeatures: d.NFeatures,
			Noise:     d.Noise,
			Seed:      d.RandomState,
		},
		DataPath:         d.DataPath,
		TargetColumn:     d.TargetColumn,
		TestSize:         d.TestSize,
		Seed:             d.RandomState,
		RemoveOutliers:   d.RemoveOutliers,
		OutlierThreshold: d.OutlierThreshold,
		Scale:            d.Scale,
	}
}

// Definition describes one experiment. A single-model experiment sets ModelType and
// ModelParams; a comparison sets Models and trains each kind with default
// hyperparameters on the same split.
type Definition struct {
	Name        string         `yaml:"name" json:"name"`
	ModelType   string         `yaml:"model_type,omitempty" json:"model_type,omitempty"`
	ModelParams map[string]any `yaml:"model_params,omitempty" json:"model_params,omitempty"`
	Models      []string       `yaml:"models,omitempty" json:"models,omitempty"`
	Data        DataConfig     `yaml:"data" json:"data"`
}

// Specs returns the model specifications the experiment trains, in order.
func (d Definition) Specs() ([]trainer.Spec, error) {
	if len(d.Models) > 0 {
		if d.ModelType != "" {
			return nil, errors.NewValidationError("models", "set either model_type or models", d.Models)
		}
		specs := make([]trainer.Spec, 0, len(d.Models))
		for _, kind := range d.Models {
			spec, err := trainer.DefaultSpec(kind)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
		return specs, nil
	}
	if d.ModelType == "" {
		return nil, errors.NewValidationError("model_type", "an experiment needs model_type or models", "")
	}
	spec, err := trainer.ParseSpec(d.ModelType, d.ModelParams)
	if err != nil {
		return nil, err
	}
	return []trainer.Spec{spec}, nil
}

func withData(mod func(*DataConfig)) DataConfig {
	d := DefaultDataConfig()
	mod(&d)
	return d
}

// Catalog holds experiment definitions by key, remembering insertion order.
type Catalog struct {
	names []string
	defs  map[string]Definition
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// Builtin returns the catalog of predefined experiments: baseline, polynomial, ridge,
// lasso, large_scale and comparison.
func Builtin() *Catalog {
	c := NewCatalog()
	c.put("baseline", Definition{
		Name:      "baseline_linear",
		ModelType: "linear",
		Data:      DefaultDataConfig(),
	})
	c.put("polynomial", Definition{
		Name:        "polynomial_features",
		ModelType:   "polynomial",
		ModelParams: map[string]any{"degree": 2},
		Data: withData(func(d *DataConfig) {
			d.NSamples, d.NFeatures, d.RemoveOutliers = 150, 5, true
		}),
	})
	c.put("ridge", Definition{
		Name:        "ridge_l2_reg",
		ModelType:   "ridge",
		ModelParams: map[string]any{"alpha": 1.0},
		Data: withData(func(d *DataConfig) {
			d.NSamples, d.NFeatures, d.RemoveOutliers = 200, 15, true
		}),
	})
	c.put("lasso", Definition{
		Name:        "lasso_l1_reg",
		ModelType:   "lasso",
		ModelParams: map[string]any{"alpha": 0.1},
		Data: withData(func(d *DataConfig) {
			d.NSamples, d.NFeatures, d.RemoveOutliers = 200, 20, true
		}),
	})
	c.put("large_scale", Definition{
		Name:        "large_scale",
		ModelType:   "ridge",
		ModelParams: map[string]any{"alpha": 0.5},
		Data: withData(func(d *DataConfig) {
			d.NSamples, d.NFeatures, d.RemoveOutliers = 1000, 50, true
		}),
	})
	c.put("comparison", Definition{
		Name:   "model_comparison",
		Models: trainer.Kinds(),
		Data: withData(func(d *DataConfig) {
			d.NSamples = 200
		}),
	})
	return c
}

func (c *Catalog) put(key string, d Definition) {
	if _, ok := c.defs[key]; !ok {
		c.names = append(c.names, key)
	}
	c.defs[key] = d
}

// Add validates d and stores it under key, replacing any definition with that key.
func (c *Catalog) Add(key string, d Definition) error {
	if key == "" {
		return errors.NewValidationError("experiment", "empty experiment key", key)
	}
	if strings.EqualFold(key, "all") {
		return errors.NewValidationError("experiment", `"all" is reserved`, key)
	}
	if _, err := d.Specs(); err != nil {
		return errors.Wrapf(err, "experiment %q", key)
	}
	if d.Name == "" {
		d.Name = key
	}
	c.put(key, d)
	return nil
}

// Get returns the definition stored under key.
func (c *Catalog) Get(key string) (Definition, error) {
	d, ok := c.defs[key]
	if !ok {
		return Definition{}, errors.NewValueError("experiment.Get",
			fmt.Sprintf("unknown experiment %q (available: %s)", key, strings.Join(c.names, ", ")))
	}
	return d, nil
}

// Names returns the experiment keys in insertion order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// definitionsFile is the YAML layout read by LoadDefinitions.
type definitionsFile struct {
	Experiments map[string]yaml.Node `yaml:"experiments"`
}

// LoadDefinitions returns the built-in catalog extended with the experiments in the YAML
// file at path:
//
//	experiments:
//	  strong_ridge:
//	    model_type: ridge
//	    model_params: {alpha: 10}
//	    data: {n_samples: 500}
//
// Omitted data fields keep their defaults. A file entry replaces the built-in experiment
// of the same key.
func LoadDefinitions(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var file definitionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.NewDataFormatError(path, "invalid experiment file: "+err.Error())
	}

	keys := make([]string, 0, len(file.Experiments))
	for k := range file.Experiments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := Builtin()
	for _, key := range keys {
		node := file.Experiments[key]
		d := Definition{Data: DefaultDataConfig()}
		if err := node.Decode(&d); err != nil {
			return nil, errors.NewDataFormatErrorAtLine(path, node.Line, fmt.Sprintf("experiment %q: %v", key, err))
		}
		if err := c.Add(key, d); err != nil {
			return nil, err
		}
	}
	return c, nil
}
