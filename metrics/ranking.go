package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// AveragePrecision summarizes the precision-recall curve of scores yPred as
// the recall-weighted mean of precision at each distinct score cutoff:
//
//	AP = Σ (R_k − R_{k−1}) · P_k
//
// Tied scores form one cutoff. Without positives the value is undefined;
// 0 is returned with an UndefinedMetricWarning.
func AveragePrecision(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("AveragePrecision", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if err := validateBinary("AveragePrecision", yTrue); err != nil {
		return 0, err
	}

	totalPos := int(mat.Sum(yTrue))
	if totalPos == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("average_precision", "no positive samples in y_true", 0))
		return 0, nil
	}

	order := rankedScores(yPred)
	ap, tp, prevRecall := 0.0, 0, 0.0
	for k := 0; k < n; {
		// consume every row tied at this score
		score := yPred.AtVec(order[k])
		for k < n && yPred.AtVec(order[k]) == score {
			tp += int(yTrue.AtVec(order[k]))
			k++
		}
		recall := float64(tp) / float64(totalPos)
		precision := float64(tp) / float64(k)
		ap += (recall - prevRecall) * precision
		prevRecall = recall
	}
	return ap, nil
}
