package metrics

import (
	"math"
	"testing"
)

func TestInertia(t *testing.T) {
	data := [][]float64{{0, 0}, {2, 0}, {10, 0}, {12, 0}}
	centroids := [][]float64{{1, 0}, {11, 0}}
	assignments := []int{0, 0, 1, 1}

	got, err := Inertia(data, centroids, assignments)
	if err != nil {
		t.Fatalf("Inertia() error = %v", err)
	}
	if math.Abs(got-4) > tolerance {
		t.Errorf("Inertia() = %v, want 4", got)
	}
}

func TestSilhouette(t *testing.T) {
	t.Run("well separated clusters score high", func(t *testing.T) {
		data := [][]float64{{0, 0}, {0.5, 0}, {10, 0}, {10.5, 0}}
		assignments := []int{0, 0, 1, 1}

		got, err := Silhouette(data, assignments, 2)
		if err != nil {
			t.Fatalf("Silhouette() error = %v", err)
		}
		if got < 0.8 {
			t.Errorf("Silhouette() = %v, want >= 0.8 for separated clusters", got)
		}
	})

	t.Run("single cluster is zero", func(t *testing.T) {
		data := [][]float64{{0, 0}, {1, 1}}
		got, err := Silhouette(data, []int{0, 0}, 1)
		if err != nil {
			t.Fatalf("Silhouette() error = %v", err)
		}
		if got != 0 {
			t.Errorf("Silhouette() = %v, want 0 for k=1", got)
		}
	})
}
