// Package errors provides the error taxonomy and warning system used across regpipe.
// It is modelled on scikit-learn's warning/exception split and carries structured
// fields so errors can be logged as zerolog objects.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("regpipe-Warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the handler used for warnings such as ConvergenceWarning.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured warning sink. It takes precedence over the
// plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// ConvergenceWarning is raised when an iterative solver stops at its iteration limit.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning is raised when a metric cannot be computed for the given data,
// e.g. MAPE when every actual value is zero.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and omitted due to %s.", w.Metric, w.Condition)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates an UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition}
}

// ===========================================================================
//
//	Pipeline error taxonomy
//
// ===========================================================================

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Setting string
	Reason  string
	Value   interface{}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("regpipe: invalid configuration for '%s': %s (got: %v)", e.Setting, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("setting", e.Setting).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError creates a ConfigurationError with a stack trace.
func NewConfigurationError(setting, reason string, value interface{}) error {
	return errors.WithStack(&ConfigurationError{Setting: setting, Reason: reason, Value: value})
}

// DataFormatError reports malformed input data: a missing target column, ragged rows,
// non-numeric cells or non-finite values left after preparation.
type DataFormatError struct {
	Source string
	Reason string
	Line   int // 0 when not tied to a line
}

func (e *DataFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("regpipe: %s: line %d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("regpipe: %s: %s", e.Source, e.Reason)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DataFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Str("reason", e.Reason).
		Int("line", e.Line).
		Str("type", "DataFormatError")
}

// NewDataFormatError creates a DataFormatError with a stack trace.
func NewDataFormatError(source, reason string) error {
	return errors.WithStack(&DataFormatError{Source: source, Reason: reason})
}

// NewDataFormatErrorAtLine creates a DataFormatError tied to an input line.
func NewDataFormatErrorAtLine(source string, line int, reason string) error {
	return errors.WithStack(&DataFormatError{Source: source, Reason: reason, Line: line})
}

// UnsupportedModelError reports an unknown model tag.
type UnsupportedModelError struct {
	ModelType string
	Supported []string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("regpipe: unsupported model type %q (supported: %v)", e.ModelType, e.Supported)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *UnsupportedModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_type", e.ModelType).
		Strs("supported", e.Supported).
		Str("type", "UnsupportedModelError")
}

// NewUnsupportedModelError creates an UnsupportedModelError with a stack trace.
func NewUnsupportedModelError(modelType string, supported []string) error {
	return errors.WithStack(&UnsupportedModelError{ModelType: modelType, Supported: supported})
}

// FitError reports that a solver could not produce a model, e.g. a singular design
// matrix caused by a zero-variance feature.
type FitError struct {
	Model  string
	Reason string
	Err    error
}

func (e *FitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("regpipe: %s: fit failed: %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("regpipe: %s: fit failed: %s", e.Model, e.Reason)
}

func (e *FitError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *FitError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model", e.Model).
		Str("reason", e.Reason).
		Str("type", "FitError")
}

// NewFitError creates a FitError with a stack trace.
func NewFitError(model, reason string, err error) error {
	return errors.WithStack(&FitError{Model: model, Reason: reason, Err: err})
}

// ===========================================================================
//
//	Estimator errors
//
// ===========================================================================

// NotFittedError is returned when Predict or Transform is called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("regpipe: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError reports a shape mismatch.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("regpipe: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError reports an invalid hyperparameter or argument.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("regpipe: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("regpipe: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError is a general model failure wrapping a cause.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("regpipe: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("regpipe: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError reports NaN or Inf values produced by a computation.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("regpipe: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation string, values []float64) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values})
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is returned when a matrix or vector has no elements.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a design matrix has a zero-variance column or a
	// normal-equation system cannot be factorized.
	ErrSingularMatrix = New("singular matrix")
)
