package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "regpipe: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "regpipe: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// stack trace points at this file
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 8, 0)

	want := "regpipe: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 8"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestPipelineErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		target  interface{}
	}{
		{
			name:    "configuration",
			err:     NewConfigurationError("TEST_SIZE", "must be in (0, 1)", 1.5),
			wantMsg: "regpipe: invalid configuration for 'TEST_SIZE': must be in (0, 1) (got: 1.5)",
			target:  new(*ConfigurationError),
		},
		{
			name:    "data format",
			err:     NewDataFormatError("data.csv", "target column \"y\" not found"),
			wantMsg: "regpipe: data.csv: target column \"y\" not found",
			target:  new(*DataFormatError),
		},
		{
			name:    "data format with line",
			err:     NewDataFormatErrorAtLine("data.csv", 3, "non-numeric value \"abc\""),
			wantMsg: "regpipe: data.csv: line 3: non-numeric value \"abc\"",
			target:  new(*DataFormatError),
		},
		{
			name:    "unsupported model",
			err:     NewUnsupportedModelError("bogus", []string{"linear", "ridge"}),
			wantMsg: "regpipe: unsupported model type \"bogus\" (supported: [linear ridge])",
			target:  new(*UnsupportedModelError),
		},
		{
			name:    "fit",
			err:     NewFitError("LinearRegression", "rank deficient design matrix", ErrSingularMatrix),
			wantMsg: "regpipe: LinearRegression: fit failed: rank deficient design matrix: singular matrix",
			target:  new(*FitError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, As(tt.err, tt.target))
		})
	}
}

func TestFitErrorUnwrapsCause(t *testing.T) {
	err := NewFitError("Ridge", "singular system", ErrSingularMatrix)
	assert.True(t, Is(err, ErrSingularMatrix))
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var fitErr *FitError
	require.True(t, As(NewFitError("Lasso", "non-finite coefficients", nil), &fitErr))
	logger.Error().Object("error", fitErr).Msg("fit failed")

	out := buf.String()
	assert.Contains(t, out, `"model":"Lasso"`)
	assert.Contains(t, out, `"type":"FitError"`)
}

func TestWarnUsesZerologSink(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("Lasso", 1000, ""))

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "Lasso failed to converge after 1000 iterations")
}

func TestWrapfAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Predict: expected 10, got 5"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestCheckMatrix(t *testing.T) {
	ok := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.NoError(t, CheckMatrix("ok", ok))

	bad := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, math.Inf(1)})
	err := CheckMatrix("bad", bad)
	var instErr *NumericalInstabilityError
	require.True(t, As(err, &instErr))
	assert.Len(t, instErr.Values, 2)
	assert.Equal(t, "bad", instErr.Operation)
}

func TestCheckScalarAndSlice(t *testing.T) {
	assert.NoError(t, CheckScalar("ok", 1.5))
	assert.NoError(t, CheckNumericalStability("ok", []float64{0, -2, 3}))

	var instErr *NumericalInstabilityError
	require.True(t, As(CheckScalar("scalar", math.Inf(-1)), &instErr))
	assert.Equal(t, "scalar", instErr.Operation)
	require.True(t, As(CheckNumericalStability("slice", []float64{1, math.NaN()}), &instErr))
	assert.Equal(t, "slice", instErr.Operation)
}
