package trainer

import (
	"encoding/gob"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regpipe/core/model"
	"github.com/YuminosukeSato/regpipe/linear"
	"github.com/YuminosukeSato/regpipe/metrics"
	"github.com/YuminosukeSato/regpipe/preprocessing"
)

func init() {
	gob.Register(LinearSpec{})
	gob.Register(PolynomialSpec{})
	gob.Register(RidgeSpec{})
	gob.Register(LassoSpec{})

	gob.Register(&linear.LinearRegression{})
	gob.Register(&linear.Ridge{})
	gob.Register(&linear.Lasso{})
}

// Estimator is a fitted linear model as held by a Pipeline.
type Estimator interface {
	model.Regressor
	model.LinearModel
	model.ParameterGetter
}

// Pipeline bundles the feature transform a model was trained with and the fitted
// estimator, so predictions always see the same features as training did. It is not
// modified after Train returns.
type Pipeline struct {
	Spec Spec

	// Poly is the polynomial expansion for PolynomialSpec and nil otherwise.
	Poly *preprocessing.PolynomialFeatures

	Estimator Estimator

	NFeatures int
	TrainedAt time.Time
}

var _ model.Predictor = (*Pipeline)(nil)

// Kind returns the model kind the pipeline was trained as.
func (p *Pipeline) Kind() Kind {
	return p.Spec.Kind()
}

// Transform applies the pipeline's feature transform to X. Without a transform X is
// returned unchanged.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if p.Poly == nil {
		return X, nil
	}
	return p.Poly.Transform(X)
}

// Predict applies the feature transform and the estimator to X.
func (p *Pipeline) Predict(X mat.Matrix) (*mat.VecDense, error) {
	Xt, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Estimator.Predict(Xt)
}

// Score returns the R² of the pipeline's predictions on (X, y).
func (p *Pipeline) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yPred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, yPred)
}

// Coef returns the estimator coefficients, one per transformed feature.
func (p *Pipeline) Coef() []float64 {
	return p.Estimator.Coef()
}

// Intercept returns the estimator intercept.
func (p *Pipeline) Intercept() float64 {
	return p.Estimator.Intercept()
}

// Params returns the hyperparameters the pipeline was trained with.
func (p *Pipeline) Params() map[string]any {
	return p.Spec.Params()
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(%s, %v)", p.Spec.Kind(), p.Spec.Params())
}
