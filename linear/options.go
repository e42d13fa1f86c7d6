package linear

// settings collects the options accepted by the estimator constructors.
type settings struct {
	fitIntercept bool
	positive     bool
	alpha        float64
	maxIter      int
	tol          float64
}

// Option configures an estimator. Options that do not apply to an estimator are ignored
// by its constructor.
type Option func(*settings)

// WithFitIntercept sets whether to calculate the intercept. When false the data is
// assumed to be centered.
func WithFitIntercept(fit bool) Option {
	return func(s *settings) {
		s.fitIntercept = fit
	}
}

// WithPositive constrains the LinearRegression coefficients to be non-negative.
func WithPositive(positive bool) Option {
	return func(s *settings) {
		s.positive = positive
	}
}

// WithAlpha sets the regularization strength of Ridge and Lasso.
func WithAlpha(alpha float64) Option {
	return func(s *settings) {
		s.alpha = alpha
	}
}

// WithMaxIter sets the iteration budget of the coordinate descent solvers.
func WithMaxIter(n int) Option {
	return func(s *settings) {
		s.maxIter = n
	}
}

// WithTol sets the convergence tolerance of the coordinate descent solvers.
func WithTol(tol float64) Option {
	return func(s *settings) {
		s.tol = tol
	}
}

func applyOptions(defaults settings, opts []Option) settings {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}
