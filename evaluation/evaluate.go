// Package evaluation scores a fitted classifier on the held-out partition.
package evaluation

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/metrics"
	"github.com/YuminosukeSato/creditdefault/pkg/errors"
	"github.com/YuminosukeSato/creditdefault/sklearn/pipeline"
)

// Scorer produces positive-class probabilities.
type Scorer interface {
	PositiveProba(X mat.Matrix) (*mat.VecDense, error)
}

// Report collects threshold-free and threshold-dependent scores.
type Report struct {
	Threshold        float64
	Samples          int
	AUC              float64
	AveragePrecision float64
	LogLoss          float64
	Brier            float64
	Accuracy         float64
	Confusion        metrics.ConfusionMatrix
	// Classes[0] is the non-default class, Classes[1] the default class.
	Classes [2]metrics.ClassScores
	FPR     []float64
	TPR     []float64
}

// Evaluate scores model on (X, y). A row is predicted positive iff its
// probability is at least threshold; AUC, average precision and log loss
// use the raw probabilities. X and y are only read.
func Evaluate(model Scorer, X mat.Matrix, y *mat.VecDense, threshold float64) (*Report, error) {
	if threshold < 0 || threshold > 1 {
		return nil, errors.NewValidationError("threshold", "must be in [0, 1]", threshold)
	}
	n, _ := X.Dims()
	if y == nil || y.Len() != n {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return nil, errors.NewDimensionError("Evaluate", n, got, 0)
	}

	proba, err := model.PositiveProba(X)
	if err != nil {
		return nil, err
	}
	labels := pipeline.Threshold(proba, threshold)

	r := &Report{Threshold: threshold, Samples: n}
	if r.AUC, err = metrics.AUC(y, proba); err != nil {
		return nil, err
	}
	if r.AveragePrecision, err = metrics.AveragePrecision(y, proba); err != nil {
		return nil, err
	}
	if r.LogLoss, err = metrics.BinaryLogLoss(y, proba); err != nil {
		return nil, err
	}
	if r.Brier, err = metrics.BrierScore(y, proba); err != nil {
		return nil, err
	}
	if r.Accuracy, err = metrics.Accuracy(y, labels); err != nil {
		return nil, err
	}
	if r.Confusion, err = metrics.NewConfusionMatrix(y, labels); err != nil {
		return nil, err
	}
	r.Classes[0] = r.Confusion.Scores(0)
	r.Classes[1] = r.Confusion.Scores(1)

	// single-class partitions have no curve; AUC already fell back to 0.5
	if fpr, tpr, _, err := metrics.ROCCurve(y, proba); err == nil {
		r.FPR, r.TPR = fpr, tpr
	}
	return r, nil
}

// String renders the report in the classification_report layout, preceded
// by the ranking scores and followed by the confusion matrix.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "ROC AUC: %.4f\n", r.AUC)
	fmt.Fprintf(&b, "Average precision: %.4f\n", r.AveragePrecision)
	fmt.Fprintf(&b, "Log loss: %.4f\n", r.LogLoss)
	fmt.Fprintf(&b, "Brier score: %.4f\n", r.Brier)
	fmt.Fprintf(&b, "Threshold: %.2f\n\n", r.Threshold)

	fmt.Fprintf(&b, "%12s %10s %9s %9s %9s\n\n", "", "precision", "recall", "f1-score", "support")
	for class, s := range r.Classes {
		fmt.Fprintf(&b, "%12d %10.2f %9.2f %9.2f %9d\n", class, s.Precision, s.Recall, s.F1, s.Support)
	}
	b.WriteString("\n")

	total := r.Confusion.Total()
	fmt.Fprintf(&b, "%12s %10s %9s %9.2f %9d\n", "accuracy", "", "", r.Accuracy, total)

	var macro, weighted metrics.ClassScores
	for _, s := range r.Classes {
		macro.Precision += s.Precision / 2
		macro.Recall += s.Recall / 2
		macro.F1 += s.F1 / 2
		if total > 0 {
			w := float64(s.Support) / float64(total)
			weighted.Precision += s.Precision * w
			weighted.Recall += s.Recall * w
			weighted.F1 += s.F1 * w
		}
	}
	fmt.Fprintf(&b, "%12s %10.2f %9.2f %9.2f %9d\n", "macro avg", macro.Precision, macro.Recall, macro.F1, total)
	fmt.Fprintf(&b, "%12s %10.2f %9.2f %9.2f %9d\n\n", "weighted avg", weighted.Precision, weighted.Recall, weighted.F1, total)

	b.WriteString("Confusion matrix (rows: true, cols: predicted)\n")
	fmt.Fprintf(&b, "%6d %6d\n%6d %6d\n", r.Confusion.TN, r.Confusion.FP, r.Confusion.FN, r.Confusion.TP)
	return b.String()
}
