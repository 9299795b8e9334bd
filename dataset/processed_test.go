package dataset

import (
	"math"
	"reflect"
	"testing"
)

func processedFixture(n int) *ProcessedDataset {
	data := make([]map[string]float64, n)
	for i := 0; i < n; i++ {
		data[i] = map[string]float64{
			"x": float64(i),
			"y": float64(i * 3),
		}
	}
	return &ProcessedDataset{
		Data:     data,
		Features: []string{"x"},
		Target:   "y",
		Scaling:  ScalingZScore,
		Stats: map[string]ColumnStats{
			"x": {Mean: 10, Std: 4, Min: 0, Max: 20},
			"y": {Mean: 30, Std: 12, Min: 0, Max: 60},
		},
	}
}

func TestScaleValue(t *testing.T) {
	p := processedFixture(10)

	if got := p.ScaleValue("x", 14); math.Abs(got-1) > 1e-9 {
		t.Errorf("ScaleValue(x, 14) = %v, want 1", got)
	}
	// ターゲット列は常にそのまま
	if got := p.ScaleValue("y", 42); got != 42 {
		t.Errorf("ScaleValue(y, 42) = %v, want 42", got)
	}
}

func TestInverseScaleRoundTrip(t *testing.T) {
	for _, method := range []ScalingMethod{ScalingZScore, ScalingMinMax, ScalingNone} {
		t.Run(string(method), func(t *testing.T) {
			p := processedFixture(10)
			p.Scaling = method
			original := 7.5
			recovered := p.InverseScale("x", p.ScaleValue("x", original))
			if math.Abs(recovered-original) > 1e-9 {
				t.Errorf("round trip = %v, want %v", recovered, original)
			}
		})
	}
}

func TestSplitTrainTest(t *testing.T) {
	p := processedFixture(100)

	train, test := p.SplitTrainTest(0.8)

	if len(train) != 80 || len(test) != 20 {
		t.Errorf("split sizes = %d/%d, want 80/20", len(train), len(test))
	}
	if len(train)+len(test) != p.NumRows() {
		t.Errorf("split loses rows: %d + %d != %d", len(train), len(test), p.NumRows())
	}
}

func TestSplitTrainTestDeterministic(t *testing.T) {
	p := processedFixture(50)

	train1, test1 := p.SplitTrainTest(0.8)
	train2, test2 := p.SplitTrainTest(0.8)

	if !reflect.DeepEqual(train1, train2) || !reflect.DeepEqual(test1, test2) {
		t.Error("identical inputs produced different splits")
	}
}

func TestSplitTrainTestTinyDataset(t *testing.T) {
	p := processedFixture(2)

	train, test := p.SplitTrainTest(0.8)

	if len(train) < 1 || len(test) < 1 {
		t.Errorf("split sizes = %d/%d, want at least one row on each side", len(train), len(test))
	}
}
