package metrics

import (
	"math"
	"testing"
)

func TestConfusionMatrix(t *testing.T) {
	yTrue := []float64{0, 0, 1, 1, 2}
	yPred := []float64{0, 1, 1, 1, 0}
	classes := []float64{0, 1, 2}

	cm, err := ConfusionMatrix(yTrue, yPred, classes)
	if err != nil {
		t.Fatalf("ConfusionMatrix() error = %v", err)
	}

	want := [][]int{
		{1, 1, 0},
		{0, 2, 0},
		{1, 0, 0},
	}
	for i := range want {
		for j := range want[i] {
			if cm[i][j] != want[i][j] {
				t.Errorf("cm[%d][%d] = %d, want %d", i, j, cm[i][j], want[i][j])
			}
		}
	}

	// 行和は各クラスの実際の出現数と一致する
	actualCounts := []int{2, 2, 1}
	for i, row := range cm {
		sum := 0
		for _, v := range row {
			sum += v
		}
		if sum != actualCounts[i] {
			t.Errorf("row %d sum = %d, want %d", i, sum, actualCounts[i])
		}
	}
}

func TestEvaluateClassification(t *testing.T) {
	tests := []struct {
		name         string
		yTrue        []float64
		yPred        []float64
		classes      []float64
		wantAccuracy float64
	}{
		{
			name:         "perfect prediction",
			yTrue:        []float64{0, 1, 0, 1},
			yPred:        []float64{0, 1, 0, 1},
			classes:      []float64{0, 1},
			wantAccuracy: 1,
		},
		{
			name:         "half correct",
			yTrue:        []float64{0, 0, 1, 1},
			yPred:        []float64{0, 1, 0, 1},
			classes:      []float64{0, 1},
			wantAccuracy: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := EvaluateClassification(tt.yTrue, tt.yPred, tt.classes)
			if err != nil {
				t.Fatalf("EvaluateClassification() error = %v", err)
			}
			if math.Abs(m.Accuracy-tt.wantAccuracy) > tolerance {
				t.Errorf("Accuracy = %v, want %v", m.Accuracy, tt.wantAccuracy)
			}
			for name, v := range map[string]float64{
				"Precision": m.Precision,
				"Recall":    m.Recall,
				"F1":        m.F1,
			} {
				if v < 0 || v > 1 {
					t.Errorf("%s = %v, want value in [0,1]", name, v)
				}
			}
		})
	}
}

func TestEvaluateClassificationMissingClass(t *testing.T) {
	// クラス2は一度も予測されない。0で代替されマクロ平均は定義される。
	yTrue := []float64{0, 1, 2, 2}
	yPred := []float64{0, 1, 0, 1}

	m, err := EvaluateClassification(yTrue, yPred, []float64{0, 1, 2})
	if err != nil {
		t.Fatalf("EvaluateClassification() error = %v", err)
	}
	if math.IsNaN(m.Precision) || math.IsNaN(m.Recall) || math.IsNaN(m.F1) {
		t.Errorf("macro metrics must not be NaN: %+v", m)
	}
	if m.F1 >= 1 {
		t.Errorf("F1 = %v, want < 1 with missing class", m.F1)
	}
}
