package cluster

import (
	"math"
	"testing"
)

func clusteredData() [][]float64 {
	// 2つの明確なクラスタ
	var X [][]float64
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(i%5) * 0.1, float64(i%4) * 0.1})
	}
	for i := 0; i < 20; i++ {
		X = append(X, []float64{10 + float64(i%5)*0.1, 10 + float64(i%4)*0.1})
	}
	return X
}

func TestKMeansFit(t *testing.T) {
	X := clusteredData()

	km := NewKMeans(WithK(2))
	if err := km.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if km.K() != 2 {
		t.Errorf("K() = %d, want 2", km.K())
	}
	if len(km.Centroids()) != 2 {
		t.Fatalf("len(Centroids()) = %d, want 2", len(km.Centroids()))
	}

	// 全ての行が [0,k) のちょうど1つのクラスタに割り当てられる
	assignments := km.Assignments()
	if len(assignments) != len(X) {
		t.Fatalf("len(Assignments()) = %d, want %d", len(assignments), len(X))
	}
	for i, a := range assignments {
		if a < 0 || a >= km.K() {
			t.Errorf("assignments[%d] = %d, want value in [0,%d)", i, a, km.K())
		}
	}

	// 同じ塊の点は同じクラスタに入る
	first := assignments[0]
	for i := 1; i < 20; i++ {
		if assignments[i] != first {
			t.Errorf("row %d assigned to %d, want %d (same cluster)", i, assignments[i], first)
		}
	}
	if assignments[20] == first {
		t.Error("distant clusters were merged")
	}
}

func TestKMeansDeterministic(t *testing.T) {
	X := clusteredData()

	km1 := NewKMeans(WithK(2))
	km2 := NewKMeans(WithK(2))
	if err := km1.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := km2.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for i := range X {
		if km1.Assignments()[i] != km2.Assignments()[i] {
			t.Fatalf("assignment %d differs between identical runs", i)
		}
	}
	if math.Abs(km1.Inertia()-km2.Inertia()) > 1e-12 {
		t.Errorf("inertia differs: %v vs %v", km1.Inertia(), km2.Inertia())
	}
}

func TestKMeansPredict(t *testing.T) {
	X := clusteredData()

	km := NewKMeans(WithK(2))
	if err := km.Fit(X); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	nearOrigin, err := km.Predict([]float64{0.2, 0.2})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	farAway, err := km.Predict([]float64{10.2, 10.2})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if nearOrigin == farAway {
		t.Error("points from different clusters predicted into the same cluster")
	}
}

func TestDeriveK(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{4, 2},
		{8, 2},
		{18, 3},
		{32, 4},
		{50, 5},
		{10000, 5},
	}
	for _, tt := range tests {
		if got := DeriveK(tt.n); got != tt.want {
			t.Errorf("DeriveK(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestKMeansInertiaNonNegative(t *testing.T) {
	km := NewKMeans(WithK(3))
	if err := km.Fit(clusteredData()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if km.Inertia() < 0 {
		t.Errorf("Inertia() = %v, want >= 0", km.Inertia())
	}
}
