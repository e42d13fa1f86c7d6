package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

func TestParseSpecDefaults(t *testing.T) {
	tests := []struct {
		tag  string
		want Spec
	}{
		{"linear", LinearSpec{FitIntercept: true}},
		{"polynomial", PolynomialSpec{Degree: 2, FitIntercept: true}},
		{"ridge", RidgeSpec{Alpha: 1.0, FitIntercept: true}},
		{"lasso", LassoSpec{Alpha: 0.1, MaxIter: 1000, Tol: 1e-4, FitIntercept: true}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseSpec(tt.tag, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Kind(tt.tag), got.Kind())
		})
	}
}

func TestParseSpecValues(t *testing.T) {
	// numbers decoded from JSON arrive as float64
	spec, err := ParseSpec("polynomial", map[string]any{"degree": 3.0, "fit_intercept": false})
	require.NoError(t, err)
	assert.Equal(t, PolynomialSpec{Degree: 3, FitIntercept: false}, spec)

	spec, err = ParseSpec("ridge", map[string]any{"alpha": 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, spec.(RidgeSpec).Alpha)

	spec, err = ParseSpec("lasso", map[string]any{"alpha": "0.01", "max_iter": 500})
	require.NoError(t, err)
	assert.Equal(t, LassoSpec{Alpha: 0.01, MaxIter: 500, Tol: 1e-4, FitIntercept: true}, spec)

	// Params round-trips through ParseSpec
	again, err := ParseSpec("lasso", spec.Params())
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}

func TestParseSpecUnsupportedModel(t *testing.T) {
	_, err := ParseSpec("bogus", map[string]any{"alpha": 1.0})
	var unsupported *errors.UnsupportedModelError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "bogus", unsupported.ModelType)
	assert.Equal(t, Kinds(), unsupported.Supported)
}

func TestParseSpecInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		params map[string]any
		param  string
	}{
		{"unknown key", "ridge", map[string]any{"degree": 2}, "degree"},
		{"fractional degree", "polynomial", map[string]any{"degree": 2.5}, "degree"},
		{"zero degree", "polynomial", map[string]any{"degree": 0}, "degree"},
		{"negative alpha", "ridge", map[string]any{"alpha": -1.0}, "alpha"},
		{"non numeric alpha", "lasso", map[string]any{"alpha": "strong"}, "alpha"},
		{"zero max_iter", "lasso", map[string]any{"max_iter": 0}, "max_iter"},
		{"bad bool", "linear", map[string]any{"fit_intercept": "maybe"}, "fit_intercept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec(tt.tag, tt.params)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}
}
