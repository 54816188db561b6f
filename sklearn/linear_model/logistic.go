// Package linear_model provides the binary logistic regression classifier.
package linear_model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/creditdefault/core/model"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// LogisticRegression is an L2-regularized binary logistic regression
// fitted with L-BFGS. It minimizes
//
//	mean log loss + ||w||² / (2·C·n)
//
// which has the same minimizer as scikit-learn's lbfgs solver. The
// intercept is not penalized.
//
// Fields are exported so a fitted model can be gob-encoded.
type LogisticRegression struct {
	model.BaseEstimator

	// Hyperparameters
	C            float64 // Inverse regularization strength
	FitIntercept bool
	MaxIter      int
	Tol          float64 // Gradient norm threshold

	// Model parameters
	Weights   []float64
	Bias      float64
	NFeatures int
	NIter     int
	Converged bool
	Loss      float64 // Objective value at the solution
}

var _ model.BinaryClassifier = (*LogisticRegression)(nil)

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		C:            1.0,
		FitIntercept: true,
		MaxIter:      1000,
		Tol:          1e-6,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.FitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of L-BFGS iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.MaxIter = maxIter
	}
}

// WithLRTol sets the gradient threshold for convergence
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.Tol = tol
	}
}

// Fit trains the model. y must be an n×1 matrix of 0/1 labels holding both
// classes. Reaching MaxIter emits a ConvergenceWarning and keeps the last
// iterate; non-finite data or loss and optimizer failures are errors.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	if lr.C <= 0 || lr.MaxIter < 1 || lr.Tol <= 0 {
		return errors.NewValidationError("LogisticRegression", "C and Tol must be positive and MaxIter at least 1",
			fmt.Sprintf("C=%g MaxIter=%d Tol=%g", lr.C, lr.MaxIter, lr.Tol))
	}
	if err := errors.CheckMatrix("LogisticRegression.Fit", X, nSamples, nFeatures, 0); err != nil {
		return err
	}

	labels := make([]float64, nSamples)
	positives := 0
	for i := range labels {
		switch v := y.At(i, 0); v {
		case 0, 1:
			labels[i] = v
			positives += int(v)
		default:
			return errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("labels must be 0 or 1, got %v at row %d", v, i))
		}
	}
	if positives == 0 || positives == nSamples {
		return errors.NewModelError("LogisticRegression.Fit", "need both classes", errors.ErrSingleClass)
	}

	obj := newObjective(mat.DenseCopyOf(X), labels, lr.C, lr.FitIntercept)
	problem := optimize.Problem{
		Func: obj.value,
		Grad: obj.gradient,
	}
	settings := &optimize.Settings{
		MajorIterations:   lr.MaxIter,
		GradientThreshold: lr.Tol,
	}

	// 最適化はゼロから開始する（決定的）
	init := make([]float64, nFeatures+1)
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if err != nil {
		return errors.NewModelError("LogisticRegression.Fit", "optimizer failed", err)
	}
	if err := errors.CheckNumericalStability("LogisticRegression.Fit", result.Location.X, result.Stats.MajorIterations); err != nil {
		return err
	}
	if err := errors.CheckScalar("log_loss", result.Location.F, result.Stats.MajorIterations); err != nil {
		return err
	}

	lr.Weights = append([]float64(nil), result.Location.X[:nFeatures]...)
	lr.Bias = result.Location.X[nFeatures]
	lr.NFeatures = nFeatures
	lr.NIter = result.Stats.MajorIterations
	lr.Loss = result.Location.F
	lr.Converged = result.Status != optimize.IterationLimit

	if !lr.Converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression(lbfgs)", lr.NIter,
			"iteration limit reached; increase MAX_ITER or scale the data"))
	}

	lr.SetFitted()
	return nil
}

// DecisionFunction returns the linear scores X·w + b.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.RequireFitted("LogisticRegression", "DecisionFunction"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.DecisionFunction", lr.NFeatures, nFeatures, 1)
	}

	scores := mat.NewVecDense(nSamples, nil)
	scores.MulVec(X, mat.NewVecDense(lr.NFeatures, lr.Weights))
	for i := 0; i < nSamples; i++ {
		scores.SetVec(i, scores.AtVec(i)+lr.Bias)
	}
	return scores, nil
}

// PositiveProba returns P(y=1) for each row.
func (lr *LogisticRegression) PositiveProba(X mat.Matrix) (*mat.VecDense, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	for i := 0; i < scores.Len(); i++ {
		scores.SetVec(i, sigmoid(scores.AtVec(i)))
	}
	return scores, nil
}

// PredictProba returns an n×2 matrix: column 0 is P(y=0), column 1 P(y=1).
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	p, err := lr.PositiveProba(X)
	if err != nil {
		return nil, err
	}
	probas := mat.NewDense(p.Len(), 2, nil)
	for i := 0; i < p.Len(); i++ {
		probas.Set(i, 0, 1-p.AtVec(i))
		probas.Set(i, 1, p.AtVec(i))
	}
	return probas, nil
}

// Predict returns class labels at the 0.5 threshold as an n×1 matrix.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	p, err := lr.PositiveProba(X)
	if err != nil {
		return nil, err
	}
	for i := 0; i < p.Len(); i++ {
		if p.AtVec(i) >= 0.5 {
			p.SetVec(i, 1)
		} else {
			p.SetVec(i, 0)
		}
	}
	return p, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Coef returns a copy of the feature weights.
func (lr *LogisticRegression) Coef() []float64 {
	return append([]float64(nil), lr.Weights...)
}

// Intercept returns the fitted bias term.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.Bias
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       "l2",
		"solver":        "lbfgs",
		"C":             lr.C,
		"fit_intercept": lr.FitIntercept,
		"max_iter":      lr.MaxIter,
		"tol":           lr.Tol,
	}
}

// String はモデルの文字列表現を返す
func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(C=%g, fit_intercept=%t, max_iter=%d, tol=%g)",
		lr.C, lr.FitIntercept, lr.MaxIter, lr.Tol)
}

// objective evaluates the regularized mean log loss over params = [w..., b].
type objective struct {
	X            *mat.Dense
	y            []float64
	penalty      float64 // 1/(C·n)
	fitIntercept bool

	z     *mat.VecDense
	resid []float64
}

func newObjective(X *mat.Dense, y []float64, c float64, fitIntercept bool) *objective {
	n, _ := X.Dims()
	return &objective{
		X:            X,
		y:            y,
		penalty:      1 / (c * float64(n)),
		fitIntercept: fitIntercept,
		z:            mat.NewVecDense(n, nil),
		resid:        make([]float64, n),
	}
}

func (o *objective) scores(params []float64) {
	_, d := o.X.Dims()
	o.z.MulVec(o.X, mat.NewVecDense(d, params[:d]))
	if o.fitIntercept {
		b := params[d]
		for i := 0; i < o.z.Len(); i++ {
			o.z.SetVec(i, o.z.AtVec(i)+b)
		}
	}
}

func (o *objective) value(params []float64) float64 {
	_, d := o.X.Dims()
	o.scores(params)

	loss := 0.0
	for i, yi := range o.y {
		z := o.z.AtVec(i)
		loss += softplus(z) - yi*z
	}
	w := params[:d]
	return loss/float64(len(o.y)) + 0.5*o.penalty*floats.Dot(w, w)
}

func (o *objective) gradient(grad, params []float64) {
	_, d := o.X.Dims()
	o.scores(params)

	n := float64(len(o.y))
	bias := 0.0
	for i, yi := range o.y {
		o.resid[i] = (sigmoid(o.z.AtVec(i)) - yi) / n
		bias += o.resid[i]
	}

	// grad_w = Xᵀ·resid + penalty·w
	gw := mat.NewVecDense(d, grad[:d])
	gw.MulVec(o.X.T(), mat.NewVecDense(len(o.resid), o.resid))
	floats.AddScaled(grad[:d], o.penalty, params[:d])

	if o.fitIntercept {
		grad[d] = bias
	} else {
		grad[d] = 0
	}
}

// sigmoid computes the logistic function without overflow.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

// softplus computes log(1 + exp(z)) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
