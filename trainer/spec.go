// Package trainer turns a model specification into a fitted Pipeline. The set of
// supported models is closed: Spec has one variant per model kind and Train dispatches
// over them with a single type switch.
package trainer

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/YuminosukeSato/regpipe/linear"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

// Kind is a model type tag.
type Kind string

// Supported model kinds.
const (
	KindLinear     Kind = "linear"
	KindPolynomial Kind = "polynomial"
	KindRidge      Kind = "ridge"
	KindLasso      Kind = "lasso"
)

// Kinds lists the supported model tags in a stable order.
func Kinds() []string {
	return []string{string(KindLinear), string(KindPolynomial), string(KindRidge), string(KindLasso)}
}

// DefaultPolyDegree is the polynomial degree used when none is given.
const DefaultPolyDegree = 2

// Spec is a model specification: one of LinearSpec, PolynomialSpec, RidgeSpec or
// LassoSpec.
type Spec interface {
	Kind() Kind
	// Params returns the hyperparameters in the map form accepted by ParseSpec.
	Params() map[string]any

	isSpec()
}

// LinearSpec selects ordinary least squares.
type LinearSpec struct {
	FitIntercept bool
	Positive     bool
}

// PolynomialSpec selects a polynomial feature expansion followed by least squares.
type PolynomialSpec struct {
	Degree       int
	FitIntercept bool
}

// RidgeSpec selects L2-regularized least squares.
type RidgeSpec struct {
	Alpha        float64
	FitIntercept bool
}

// LassoSpec selects L1-regularized least squares.
type LassoSpec struct {
	Alpha        float64
	MaxIter      int
	Tol          float64
	FitIntercept bool
}

func (LinearSpec) Kind() Kind     { return KindLinear }
func (PolynomialSpec) Kind() Kind { return KindPolynomial }
func (RidgeSpec) Kind() Kind      { return KindRidge }
func (LassoSpec) Kind() Kind      { return KindLasso }

func (LinearSpec) isSpec()     {}
func (PolynomialSpec) isSpec() {}
func (RidgeSpec) isSpec()      {}
func (LassoSpec) isSpec()      {}

func (s LinearSpec) Params() map[string]any {
	return map[string]any{"fit_intercept": s.FitIntercept, "positive": s.Positive}
}

func (s PolynomialSpec) Params() map[string]any {
	return map[string]any{"degree": s.Degree, "fit_intercept": s.FitIntercept}
}

func (s RidgeSpec) Params() map[string]any {
	return map[string]any{"alpha": s.Alpha, "fit_intercept": s.FitIntercept}
}

func (s LassoSpec) Params() map[string]any {
	return map[string]any{"alpha": s.Alpha, "max_iter": s.MaxIter, "tol": s.Tol, "fit_intercept": s.FitIntercept}
}

// DefaultSpec returns the specification of kind with every hyperparameter at its default.
func DefaultSpec(kind string) (Spec, error) {
	switch Kind(kind) {
	case KindLinear:
		return LinearSpec{FitIntercept: true}, nil
	case KindPolynomial:
		return PolynomialSpec{Degree: DefaultPolyDegree, FitIntercept: true}, nil
	case KindRidge:
		return RidgeSpec{Alpha: linear.DefaultRidgeAlpha, FitIntercept: true}, nil
	case KindLasso:
		return LassoSpec{
			Alpha:        linear.DefaultLassoAlpha,
			MaxIter:      linear.DefaultLassoMaxIter,
			Tol:          linear.DefaultLassoTol,
			FitIntercept: true,
		}, nil
	default:
		return nil, errors.NewUnsupportedModelError(kind, Kinds())
	}
}

// ParseSpec builds the Spec for tag from a hyperparameter map. Missing keys take their
// defaults. An unknown tag is an UnsupportedModelError; an unknown key or a value of the
// wrong type or range is a ValidationError.
func ParseSpec(tag string, params map[string]any) (Spec, error) {
	spec, err := DefaultSpec(tag)
	if err != nil {
		return nil, err
	}
	p := paramReader{params: params}

	switch s := spec.(type) {
	case LinearSpec:
		p.boolean("fit_intercept", &s.FitIntercept)
		p.boolean("positive", &s.Positive)
		spec = s
	case PolynomialSpec:
		p.integer("degree", &s.Degree)
		p.boolean("fit_intercept", &s.FitIntercept)
		if p.err == nil && s.Degree < 1 {
			p.err = errors.NewValidationError("degree", "must be at least 1", s.Degree)
		}
		spec = s
	case RidgeSpec:
		p.float("alpha", &s.Alpha)
		p.boolean("fit_intercept", &s.FitIntercept)
		if p.err == nil && s.Alpha < 0 {
			p.err = errors.NewValidationError("alpha", "must not be negative", s.Alpha)
		}
		spec = s
	case LassoSpec:
		p.float("alpha", &s.Alpha)
		p.integer("max_iter", &s.MaxIter)
		p.float("tol", &s.Tol)
		p.boolean("fit_intercept", &s.FitIntercept)
		switch {
		case p.err != nil:
		case s.Alpha < 0:
			p.err = errors.NewValidationError("alpha", "must not be negative", s.Alpha)
		case s.MaxIter < 1:
			p.err = errors.NewValidationError("max_iter", "must be positive", s.MaxIter)
		case s.Tol <= 0:
			p.err = errors.NewValidationError("tol", "must be positive", s.Tol)
		}
		spec = s
	}

	if p.err != nil {
		return nil, p.err
	}
	if unknown := p.unknownKeys(); len(unknown) > 0 {
		return nil, errors.NewValidationError(unknown[0],
			fmt.Sprintf("not a hyperparameter of %s", tag), params[unknown[0]])
	}
	return spec, nil
}

// paramReader reads typed values out of a loosely typed map, keeping the first error.
// Values decoded from JSON or YAML arrive as float64, int or string.
type paramReader struct {
	params map[string]any
	used   []string
	err    error
}

func (p *paramReader) lookup(key string) (any, bool) {
	p.used = append(p.used, key)
	if p.err != nil {
		return nil, false
	}
	v, ok := p.params[key]
	return v, ok && v != nil
}

func (p *paramReader) float(key string, dst *float64) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	switch x := v.(type) {
	case float64:
		*dst = x
	case float32:
		*dst = float64(x)
	case int:
		*dst = float64(x)
	case int64:
		*dst = float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			p.err = errors.NewValidationError(key, "must be a number", v)
			return
		}
		*dst = f
	default:
		p.err = errors.NewValidationError(key, "must be a number", v)
	}
	if p.err == nil && (math.IsNaN(*dst) || math.IsInf(*dst, 0)) {
		p.err = errors.NewValidationError(key, "must be finite", v)
	}
}

func (p *paramReader) integer(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	switch x := v.(type) {
	case int:
		*dst = x
	case int64:
		*dst = int(x)
	case float64:
		if x != math.Trunc(x) {
			p.err = errors.NewValidationError(key, "must be an integer", v)
			return
		}
		*dst = int(x)
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			p.err = errors.NewValidationError(key, "must be an integer", v)
			return
		}
		*dst = n
	default:
		p.err = errors.NewValidationError(key, "must be an integer", v)
	}
}

func (p *paramReader) boolean(key string, dst *bool) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	switch x := v.(type) {
	case bool:
		*dst = x
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			p.err = errors.NewValidationError(key, "must be a boolean", v)
			return
		}
		*dst = b
	default:
		p.err = errors.NewValidationError(key, "must be a boolean", v)
	}
}

func (p *paramReader) unknownKeys() []string {
	used := make(map[string]bool, len(p.used))
	for _, k := range p.used {
		used[k] = true
	}
	var unknown []string
	for k := range p.params {
		if !used[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}
