// Package linearmodel は線形回帰とロジスティック回帰を提供する。
package linearmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabml/core/model"
	"github.com/YuminosukeSato/tabml/pkg/errors"
)

// ridgeEpsilon は特異行列のフォールバック時に対角へ加える正則化項
const ridgeEpsilon = 1e-8

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator

	weights   []float64 // 特徴量ごとの係数
	intercept float64   // 切片
	nFeatures int
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit はモデルを訓練データで学習させる。
// 正規方程式 w = (X^T X)^(-1) X^T y を解く。X^T X が特異な場合
// （定数特徴量など）は対角に微小なリッジ項を加えて解を安定させる。
func (lr *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != n {
		return errors.NewDimensionError("LinearRegression.Fit", n, len(y), 0)
	}
	p := len(X[0])
	lr.nFeatures = p

	// 切片項のために X に 1 の列を追加
	xd := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		xd.Set(i, 0, 1)
		for j, v := range row {
			xd.Set(i, j+1, v)
		}
	}
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(xd.T(), xd)
	var xty mat.VecDense
	xty.MulVec(xd.T(), yv)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		// 特異行列: リッジ項を加えて再試行
		for j := 0; j <= p; j++ {
			xtx.Set(j, j, xtx.At(j, j)+ridgeEpsilon)
		}
		if err := w.SolveVec(&xtx, &xty); err != nil {
			return errors.NewModelError("LinearRegression.Fit", "normal equations", errors.ErrSingularMatrix)
		}
	}

	lr.intercept = w.AtVec(0)
	lr.weights = make([]float64, p)
	for j := 0; j < p; j++ {
		lr.weights[j] = w.AtVec(j + 1)
	}
	lr.SetFitted()
	return nil
}

// Predict は1行の予測値を返す
func (lr *LinearRegression) Predict(x []float64) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	if len(x) != lr.nFeatures {
		return 0, errors.NewDimensionError("LinearRegression.Predict", lr.nFeatures, len(x), 1)
	}
	pred := lr.intercept
	for j, v := range x {
		pred += lr.weights[j] * v
	}
	return pred, nil
}

// PredictBatch は全行の予測値を返す
func (lr *LinearRegression) PredictBatch(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		p, err := lr.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Coefficients は特徴量ごとの係数を返す
func (lr *LinearRegression) Coefficients() []float64 {
	return lr.weights
}

// Intercept は切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return "LinearRegression(unfitted)"
	}
	return fmt.Sprintf("LinearRegression(n_features=%d)", lr.nFeatures)
}
