package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/creditdefault/pkg/errors"
)

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validatePair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// BrierScore は確率予測の平均二乗誤差を計算する
//
// yTrue は 0/1 ラベル、proba は陽性クラスの確率 [0, 1]。
// 0 が完全な予測、常に 0.5 を返す予測は 0.25 になる。
func BrierScore(yTrue, proba *mat.VecDense) (float64, error) {
	if _, err := validatePair("BrierScore", yTrue, proba); err != nil {
		return 0, err
	}
	if err := validateBinary("BrierScore", yTrue); err != nil {
		return 0, err
	}
	for i := 0; i < proba.Len(); i++ {
		if p := proba.AtVec(i); p < 0 || p > 1 {
			return 0, errors.NewValueError("BrierScore", fmt.Sprintf("probability %v at row %d outside [0, 1]", p, i))
		}
	}
	return MSE(yTrue, proba)
}

// BrierSkillScore compares the Brier score against always predicting the
// observed positive rate: 1 is perfect, 0 is no better than the base rate,
// negative is worse.
//
// The reference score is zero when yTrue holds one class; the skill score
// is undefined then and an error is returned.
func BrierSkillScore(yTrue, proba *mat.VecDense) (float64, error) {
	bs, err := BrierScore(yTrue, proba)
	if err != nil {
		return 0, err
	}

	// 基準予測 = 陽性率 p、その Brier スコアは p(1-p)
	rate := mat.Sum(yTrue) / float64(yTrue.Len())
	ref := rate * (1 - rate)
	if ref == 0 {
		return 0, errors.Wrap(errors.ErrSingleClass, "BrierSkillScore")
	}
	return 1 - bs/ref, nil
}
