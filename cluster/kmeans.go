// Package cluster は距離ベースのクラスタリングを提供する。
// 初期セントロイドは等間隔の行から決定的に選ばれるため、
// 同一入力に対する実行は常に同一の分割を返す。
package cluster

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/tabml/core/model"
	"github.com/YuminosukeSato/tabml/pkg/errors"
)

const (
	defaultMaxIter = 100
	convergenceTol = 1e-6

	minClusters = 2
	maxClusters = 5
)

// KMeans はLloyd法によるk-meansクラスタリング
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	k       int // 0 の場合は行数から導出
	maxIter int

	// 学習パラメータ
	centroids   [][]float64
	assignments []int
	inertia     float64
	nIter       int
}

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// WithK はクラスタ数を設定する。0 は行数からの導出を意味する。
func WithK(k int) KMeansOption {
	return func(km *KMeans) { km.k = k }
}

// WithMaxIter は最大イテレーション数を設定する
func WithMaxIter(maxIter int) KMeansOption {
	return func(km *KMeans) { km.maxIter = maxIter }
}

// NewKMeans は新しいKMeansを作成する
func NewKMeans(options ...KMeansOption) *KMeans {
	km := &KMeans{maxIter: defaultMaxIter}
	for _, opt := range options {
		opt(km)
	}
	return km
}

// DeriveK は行数に応じた既定のクラスタ数 clamp(√(n/2), 2, 5) を返す
func DeriveK(n int) int {
	k := int(math.Sqrt(float64(n) / 2))
	if k < minClusters {
		k = minClusters
	}
	if k > maxClusters {
		k = maxClusters
	}
	return k
}

// Fit はデータをクラスタリングする。X は行×特徴量の行列。
func (km *KMeans) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return errors.NewModelError("KMeans.Fit", "empty data", errors.ErrEmptyData)
	}

	k := km.k
	if k <= 0 {
		k = DeriveK(n)
	}
	if k > n {
		k = n
	}

	// 等間隔の行を初期セントロイドとして選ぶ（決定的）
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		idx := c * n / k
		centroids[c] = append([]float64(nil), X[idx]...)
	}

	assignments := make([]int, n)
	for iter := 0; iter < km.maxIter; iter++ {
		// 各行を最近傍セントロイドへ割り当てる
		for i, row := range X {
			assignments[i] = nearestCentroid(row, centroids)
		}

		// セントロイドを割り当ての重心へ移動する
		moved := 0.0
		for c := 0; c < k; c++ {
			mean := make([]float64, len(X[0]))
			count := 0
			for i, row := range X {
				if assignments[i] != c {
					continue
				}
				for j, v := range row {
					mean[j] += v
				}
				count++
			}
			if count == 0 {
				// 空クラスタはセントロイドを据え置く
				continue
			}
			for j := range mean {
				mean[j] /= float64(count)
			}
			moved += math.Sqrt(squaredDistance(centroids[c], mean))
			centroids[c] = mean
		}

		km.nIter = iter + 1
		if moved < convergenceTol {
			break
		}
	}

	if km.nIter == km.maxIter {
		errors.Warn(errors.NewConvergenceWarning("KMeans", km.maxIter, ""))
	}

	// 最終割り当てとイナーシャ
	inertia := 0.0
	for i, row := range X {
		assignments[i] = nearestCentroid(row, centroids)
		inertia += squaredDistance(row, centroids[assignments[i]])
	}

	km.k = k
	km.centroids = centroids
	km.assignments = assignments
	km.inertia = inertia
	km.SetFitted()
	return nil
}

// Predict は行を最近傍セントロイドのクラスタ番号へ割り当てる
func (km *KMeans) Predict(x []float64) (int, error) {
	if !km.IsFitted() {
		return 0, errors.NewNotFittedError("KMeans", "Predict")
	}
	return nearestCentroid(x, km.centroids), nil
}

// K は学習に使われたクラスタ数を返す
func (km *KMeans) K() int { return km.k }

// Centroids は学習済みセントロイドを返す
func (km *KMeans) Centroids() [][]float64 { return km.centroids }

// Assignments は学習データ各行のクラスタ番号を返す
func (km *KMeans) Assignments() []int { return km.assignments }

// Inertia はクラスタ内二乗距離の総和を返す
func (km *KMeans) Inertia() float64 { return km.inertia }

// String はクラスタラの文字列表現を返す
func (km *KMeans) String() string {
	if !km.IsFitted() {
		return fmt.Sprintf("KMeans(k=%d)", km.k)
	}
	return fmt.Sprintf("KMeans(k=%d, inertia=%.4f, iterations=%d)", km.k, km.inertia, km.nIter)
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		d := squaredDistance(row, centroid)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
