package linearmodel

import (
	"math"
	"testing"
)

func TestLogisticRegressionBinarySeparable(t *testing.T) {
	// x < 0 → クラス0、x > 0 → クラス1 の完全分離データ
	X := [][]float64{{-3}, {-2}, {-1}, {1}, {2}, {3}}
	y := []float64{0, 0, 0, 1, 1, 1}

	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for i, x := range X {
		pred, err := m.Predict(x)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if pred != y[i] {
			t.Errorf("Predict(%v) = %v, want %v", x, pred, y[i])
		}
	}
}

func TestLogisticRegressionMulticlass(t *testing.T) {
	X := [][]float64{
		{0, 0}, {0.2, 0.1}, {0.1, 0.2},
		{5, 0}, {5.2, 0.1}, {4.8, 0.2},
		{0, 5}, {0.1, 5.2}, {0.2, 4.8},
	}
	y := []float64{0, 0, 0, 1, 1, 1, 2, 2, 2}

	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := len(m.Classes()); got != 3 {
		t.Fatalf("len(Classes()) = %d, want 3", got)
	}

	correct := 0
	for i, x := range X {
		pred, err := m.Predict(x)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if pred == y[i] {
			correct++
		}
	}
	if correct < 8 {
		t.Errorf("training accuracy = %d/9, want >= 8/9", correct)
	}
}

func TestLogisticRegressionScores(t *testing.T) {
	X := [][]float64{{-2}, {-1}, {1}, {2}}
	y := []float64{0, 0, 1, 1}

	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	scores, err := m.Scores([]float64{2})
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("len(Scores()) = %d, want 2", len(scores))
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("scores[%d] = %v, want value in [0,1]", i, s)
		}
	}
	if scores[1] <= scores[0] {
		t.Errorf("scores = %v, want class 1 to dominate for x=2", scores)
	}
}

func TestLogisticRegressionClassCap(t *testing.T) {
	// 10クラスを超えるラベルは学習対象から外れる
	n := 12
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i)}
		y[i] = float64(i)
	}

	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := len(m.Classes()); got != 10 {
		t.Errorf("len(Classes()) = %d, want cap 10", got)
	}
}

func TestSigmoid(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{100, 1},
		{-100, 0},
	}
	for _, tt := range tests {
		if got := sigmoid(tt.z); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("sigmoid(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
}
