package metrics

import (
	"github.com/YuminosukeSato/tabml/pkg/errors"
)

// ClassificationMetrics は分類モデルの評価指標。
// Precision / Recall / F1 はクラスごとの値の単純平均（マクロ平均）。
type ClassificationMetrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64

	// Confusion は Classes の順に並んだ混同行列。行が実測、列が予測。
	Confusion [][]int
	Classes   []float64
}

// ConfusionMatrix は宣言されたクラスラベル全体に対する混同行列を構築する。
// ラベル集合に含まれない値を持つサンプルは無視される。
func ConfusionMatrix(yTrue, yPred, classes []float64) ([][]int, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if len(yPred) != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, len(yPred), 0)
	}
	if len(classes) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "no classes declared")
	}

	index := make(map[float64]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	k := len(classes)
	matrix := make([][]int, k)
	for i := range matrix {
		matrix[i] = make([]int, k)
	}
	for i := range yTrue {
		ti, ok1 := index[yTrue[i]]
		pi, ok2 := index[yPred[i]]
		if !ok1 || !ok2 {
			continue
		}
		matrix[ti][pi]++
	}
	return matrix, nil
}

// EvaluateClassification は混同行列から精度とマクロ平均の適合率・再現率・F1を計算する。
// 予測または実測が存在しないクラスの指標は 0 として平均に含める。
func EvaluateClassification(yTrue, yPred, classes []float64) (ClassificationMetrics, error) {
	matrix, err := ConfusionMatrix(yTrue, yPred, classes)
	if err != nil {
		return ClassificationMetrics{}, err
	}

	k := len(classes)
	total := 0
	trace := 0
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			total += matrix[i][j]
		}
		trace += matrix[i][i]
	}

	accuracy := 0.0
	if total > 0 {
		accuracy = float64(trace) / float64(total)
	}

	var precisionSum, recallSum, f1Sum float64
	for i := 0; i < k; i++ {
		tp := matrix[i][i]
		predicted := 0
		actual := 0
		for j := 0; j < k; j++ {
			predicted += matrix[j][i]
			actual += matrix[i][j]
		}

		precision := 0.0
		if predicted > 0 {
			precision = float64(tp) / float64(predicted)
		} else {
			errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples for class", 0))
		}

		recall := 0.0
		if actual > 0 {
			recall = float64(tp) / float64(actual)
		} else {
			errors.Warn(errors.NewUndefinedMetricWarning("recall", "no actual samples for class", 0))
		}

		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		precisionSum += precision
		recallSum += recall
		f1Sum += f1
	}

	return ClassificationMetrics{
		Accuracy:  accuracy,
		Precision: precisionSum / float64(k),
		Recall:    recallSum / float64(k),
		F1:        f1Sum / float64(k),
		Confusion: matrix,
		Classes:   classes,
	}, nil
}
