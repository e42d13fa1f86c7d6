package experiment

import (
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/trainer"
)

// HyperparameterGrid lists the hyperparameter sets to try for each model kind.
type HyperparameterGrid map[trainer.Kind][]map[string]any

// DefaultGrid returns the grid searched by Runner.Grid.
func DefaultGrid() HyperparameterGrid {
	return HyperparameterGrid{
		trainer.KindLinear: {{}},
		trainer.KindPolynomial: {
			{"degree": 1},
			{"degree": 2},
			{"degree": 3},
		},
		trainer.KindRidge: {
			{"alpha": 0.01},
			{"alpha": 0.1},
			{"alpha": 1.0},
			{"alpha": 10.0},
		},
		trainer.KindLasso: {
			{"alpha": 0.001},
			{"alpha": 0.01},
			{"alpha": 0.1},
			{"alpha": 1.0},
		},
	}
}

// Specs parses every grid point of kind. An unknown kind is an UnsupportedModelError.
func (g HyperparameterGrid) Specs(kind string) ([]trainer.Spec, error) {
	if _, err := trainer.DefaultSpec(kind); err != nil {
		return nil, err
	}
	points, ok := g[trainer.Kind(kind)]
	if !ok || len(points) == 0 {
		return nil, errors.NewValueError("experiment.Grid", "no grid points for "+kind)
	}
	specs := make([]trainer.Spec, 0, len(points))
	for _, params := range points {
		spec, err := trainer.ParseSpec(kind, params)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
