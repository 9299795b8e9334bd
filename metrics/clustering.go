package metrics

import (
	"math"

	"github.com/YuminosukeSato/tabml/pkg/errors"
)

// silhouetteSampleLimit はシルエット推定に使うサンプル数の上限。
// 全ペア距離は O(n²) なので大きなデータでは等間隔サンプリングで近似する。
const silhouetteSampleLimit = 200

// ClusteringMetrics はクラスタリングの評価指標
type ClusteringMetrics struct {
	K          int
	Inertia    float64
	Silhouette float64
}

// Inertia は各サンプルと割り当て先セントロイドとの二乗距離の総和を計算する
func Inertia(data [][]float64, centroids [][]float64, assignments []int) (float64, error) {
	if len(data) == 0 {
		return 0, errors.NewValueError("Inertia", "empty data")
	}
	if len(assignments) != len(data) {
		return 0, errors.NewDimensionError("Inertia", len(data), len(assignments), 0)
	}

	var sum float64
	for i, row := range data {
		c := assignments[i]
		if c < 0 || c >= len(centroids) {
			return 0, errors.NewValueError("Inertia", "assignment index out of range")
		}
		sum += squaredDistance(row, centroids[c])
	}
	return sum, nil
}

// Silhouette は平均シルエット係数の推定値を計算する。
// クラスタが1つしかない場合やサンプルが2未満の場合は 0 を返す。
func Silhouette(data [][]float64, assignments []int, k int) (float64, error) {
	n := len(data)
	if n == 0 {
		return 0, errors.NewValueError("Silhouette", "empty data")
	}
	if len(assignments) != n {
		return 0, errors.NewDimensionError("Silhouette", n, len(assignments), 0)
	}
	if k < 2 || n < 2 {
		return 0, nil
	}

	// 等間隔サンプリングで計算量を抑える
	step := 1
	if n > silhouetteSampleLimit {
		step = n / silhouetteSampleLimit
	}

	var total float64
	count := 0
	for i := 0; i < n; i += step {
		a := meanDistanceToCluster(data, assignments, i, assignments[i])
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == assignments[i] {
				continue
			}
			d := meanDistanceToCluster(data, assignments, i, c)
			if d >= 0 && d < b {
				b = d
			}
		}
		if a < 0 || math.IsInf(b, 1) {
			continue
		}
		den := math.Max(a, b)
		if den > 0 {
			total += (b - a) / den
			count++
		}
	}

	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

// meanDistanceToCluster はサンプル i からクラスタ c の他サンプルへの平均距離を返す。
// クラスタに他のサンプルが存在しない場合は -1 を返す。
func meanDistanceToCluster(data [][]float64, assignments []int, i, c int) float64 {
	var sum float64
	count := 0
	for j, row := range data {
		if j == i || assignments[j] != c {
			continue
		}
		sum += math.Sqrt(squaredDistance(data[i], row))
		count++
	}
	if count == 0 {
		return -1
	}
	return sum / float64(count)
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
