// Package metrics provides binary classification metrics on gonum vectors.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// logLossEps clips probabilities away from 0 and 1.
const logLossEps = 1e-15

// validatePair checks both vectors are non-nil, non-empty and equal length.
func validatePair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "input vectors must not be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func validateBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, fmt.Sprintf("labels must be 0 or 1, got %v at row %d", v, i))
		}
	}
	return nil
}

// ROCCurve returns the false and true positive rates for every distinct
// score cutoff, starting at (0, 0) and ending at (1, 1). Scores tied at a
// cutoff move together.
func ROCCurve(yTrue, scores *mat.VecDense) (fpr, tpr, thresholds []float64, err error) {
	n, err := validatePair("ROCCurve", yTrue, scores)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := validateBinary("ROCCurve", yTrue); err != nil {
		return nil, nil, nil, err
	}

	y := make([]float64, n)
	classes := make([]bool, n)
	positives := 0
	for i := 0; i < n; i++ {
		y[i] = scores.AtVec(i)
		classes[i] = yTrue.AtVec(i) == 1
		if classes[i] {
			positives++
		}
	}
	if positives == 0 || positives == n {
		return nil, nil, nil, errors.Wrap(errors.ErrSingleClass, "ROCCurve")
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, thresholds = stat.ROC(nil, y, classes, nil)
	return fpr, tpr, thresholds, nil
}

// AUC returns the area under the ROC curve of scores yPred against binary
// labels yTrue. With a single class present the area is undefined; 0.5 is
// returned and an UndefinedMetricWarning is raised.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("AUC", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if err := validateBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	positives := int(mat.Sum(yTrue))
	if positives == 0 || positives == n {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc", "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	fpr, tpr, _, err := ROCCurve(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return integrate.Trapezoidal(fpr, tpr), nil
}

// AUCMatrix computes AUC on the first column of each matrix.
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(t, p)
}

func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "input matrix must not be nil")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}

// BinaryLogLoss returns the mean negative log-likelihood of probabilities
// yPred, clipped to [eps, 1-eps].
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("BinaryLogLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if err := validateBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	loss := 0.0
	for i := 0; i < n; i++ {
		p := errors.ClipValue(yPred.AtVec(i), logLossEps, 1-logLossEps)
		if yTrue.AtVec(i) == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	loss /= float64(n)
	if err := errors.CheckScalar("log_loss", loss, 0); err != nil {
		return 0, err
	}
	return loss, nil
}

// Accuracy returns the fraction of equal labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError returns 1 - Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix counts binary outcomes with 1 as the positive class.
type ConfusionMatrix struct {
	TN, FP, FN, TP int
}

// NewConfusionMatrix tallies predicted labels against true labels.
func NewConfusionMatrix(yTrue, yPred *mat.VecDense) (ConfusionMatrix, error) {
	var cm ConfusionMatrix
	n, err := validatePair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return cm, err
	}
	if err := validateBinary("ConfusionMatrix", yTrue); err != nil {
		return cm, err
	}
	if err := validateBinary("ConfusionMatrix", yPred); err != nil {
		return cm, err
	}
	for i := 0; i < n; i++ {
		switch t, p := yTrue.AtVec(i) == 1, yPred.AtVec(i) == 1; {
		case t && p:
			cm.TP++
		case t:
			cm.FN++
		case p:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm, nil
}

// Total returns the number of tallied rows.
func (cm ConfusionMatrix) Total() int {
	return cm.TN + cm.FP + cm.FN + cm.TP
}

// ClassScores holds the per-class report line.
type ClassScores struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Scores returns precision, recall and F1 treating class (0 or 1) as the
// positive label. Undefined ratios are 0 and raise UndefinedMetricWarning.
func (cm ConfusionMatrix) Scores(class int) ClassScores {
	tp, fp, fn := cm.TP, cm.FP, cm.FN
	if class == 0 {
		tp, fp, fn = cm.TN, cm.FN, cm.FP
	}

	s := ClassScores{Support: tp + fn}
	s.Precision = ratio(tp, tp+fp, "precision", "no predicted samples", class)
	s.Recall = ratio(tp, tp+fn, "recall", "no true samples", class)
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func ratio(num, den int, metric, condition string, class int) float64 {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(metric, fmt.Sprintf("%s for class %d", condition, class), 0))
		return 0
	}
	return float64(num) / float64(den)
}

// PrecisionRecallF1 returns the positive-class precision, recall and F1.
func PrecisionRecallF1(yTrue, yPred *mat.VecDense) (precision, recall, f1 float64, err error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, 0, 0, err
	}
	s := cm.Scores(1)
	return s.Precision, s.Recall, s.F1, nil
}

// rankedScores returns row indices ordered by descending score, ties kept
// in row order.
func rankedScores(scores *mat.VecDense) []int {
	order := make([]int, scores.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores.AtVec(order[a]) > scores.AtVec(order[b])
	})
	return order
}
