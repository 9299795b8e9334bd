package linearmodel

import (
	"math"
	"testing"
)

const tolerance = 1e-6

func TestLinearRegressionFit(t *testing.T) {
	// y = 2x + 1 を誤差なしで学習できる
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{3, 5, 7, 9}

	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := m.Intercept(); math.Abs(got-1) > tolerance {
		t.Errorf("Intercept() = %v, want 1", got)
	}
	coefs := m.Coefficients()
	if len(coefs) != 1 || math.Abs(coefs[0]-2) > tolerance {
		t.Errorf("Coefficients() = %v, want [2]", coefs)
	}
}

func TestLinearRegressionMultiFeature(t *testing.T) {
	// y = 3a - 2b + 5
	X := [][]float64{
		{1, 1}, {2, 1}, {3, 2}, {4, 3}, {5, 2}, {6, 4},
	}
	y := make([]float64, len(X))
	for i, x := range X {
		y[i] = 3*x[0] - 2*x[1] + 5
	}

	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := m.Predict([]float64{7, 3})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	want := 3*7.0 - 2*3.0 + 5
	if math.Abs(pred-want) > tolerance {
		t.Errorf("Predict() = %v, want %v", pred, want)
	}
}

func TestLinearRegressionDegenerateFeature(t *testing.T) {
	// 定数特徴量は特異行列になるがリッジ補正で学習は完了する
	X := [][]float64{{1, 5}, {2, 5}, {3, 5}, {4, 5}}
	y := []float64{2, 4, 6, 8}

	m := NewLinearRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := m.Predict([]float64{5, 5})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred-10) > 0.1 {
		t.Errorf("Predict() = %v, want ~10", pred)
	}
}

func TestLinearRegressionNotFitted(t *testing.T) {
	m := NewLinearRegression()
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("Predict() expected error before Fit")
	}
}

func TestLinearRegressionEmptyData(t *testing.T) {
	m := NewLinearRegression()
	if err := m.Fit(nil, nil); err == nil {
		t.Error("Fit() expected error for empty data")
	}
}
