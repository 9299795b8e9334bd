// Package metrics は学習済みモデルをホールドアウト予測に対して採点する純関数群を提供する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/tabml/pkg/errors"
)

// mapeCap は異常に小さい実測値による MAPE の爆発を防ぐ上限
const mapeCap = 9999

// RegressionMetrics は回帰モデルの評価指標
type RegressionMetrics struct {
	RMSE       float64
	MAE        float64
	R2         float64
	AdjustedR2 float64
	MAPE       float64
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("RMSE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("RMSE", n, len(yPred), 0)
	}

	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n)), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("MAE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("MAE", n, len(yPred), 0)
	}

	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。
// 全変動がゼロ（yTrue が定数）の場合は 1 を返し、負の値は 0 に切り上げる。
func R2Score(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("R2Score", n, len(yPred), 0)
	}

	var yMean float64
	for _, v := range yTrue {
		yMean += v
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := range yTrue {
		tss += (yTrue[i] - yMean) * (yTrue[i] - yMean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}

	if tss == 0 {
		return 1, nil
	}
	r2 := 1 - rss/tss
	if r2 < 0 {
		r2 = 0
	}
	return r2, nil
}

// AdjustedR2 は自由度調整済み決定係数を計算する。
// n <= nFeatures+1 の場合は調整が定義できないため R² をそのまま返す。
func AdjustedR2(r2 float64, n, nFeatures int) float64 {
	if n <= nFeatures+1 {
		return r2
	}
	adj := 1 - (1-r2)*float64(n-1)/float64(n-nFeatures-1)
	if adj < 0 {
		adj = 0
	}
	return adj
}

// MAPE は平均絶対パーセンテージ誤差を計算する。
// ゼロ近傍の実測値は分母から除外し、結果は mapeCap で頭打ちにする。
func MAPE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("MAPE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("MAPE", n, len(yPred), 0)
	}

	var sum float64
	validCount := 0
	for i := range yTrue {
		if math.Abs(yTrue[i]) < 1e-8 {
			continue
		}
		sum += math.Abs(yTrue[i]-yPred[i]) / math.Abs(yTrue[i])
		validCount++
	}

	if validCount == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("MAPE", "all actuals near zero", 0))
		return 0, nil
	}
	mape := (sum / float64(validCount)) * 100
	if mape > mapeCap {
		mape = mapeCap
	}
	return mape, nil
}

// EvaluateRegression はホールドアウト予測から回帰指標一式を計算する
func EvaluateRegression(yTrue, yPred []float64, nFeatures int) (RegressionMetrics, error) {
	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}
	mape, err := MAPE(yTrue, yPred)
	if err != nil {
		return RegressionMetrics{}, err
	}

	return RegressionMetrics{
		RMSE:       rmse,
		MAE:        mae,
		R2:         r2,
		AdjustedR2: AdjustedR2(r2, len(yTrue), nFeatures),
		MAPE:       mape,
	}, nil
}
