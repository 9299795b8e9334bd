package feature

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/tabml/dataset"
)

func processedFixture() *dataset.ProcessedDataset {
	n := 40
	data := make([]map[string]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		data[i] = map[string]float64{
			"strong":   x,
			"weak":     math.Sin(x * 7.13),
			"constant": 3.14,
			"target":   2*x + 1,
		}
	}
	return &dataset.ProcessedDataset{
		Data:     data,
		Features: []string{"strong", "weak", "constant"},
		Target:   "target",
		Stats:    map[string]dataset.ColumnStats{},
	}
}

func TestAnalyzeImportanceRanking(t *testing.T) {
	result := NewAnalyzer().Analyze(processedFixture())

	if len(result.Importances) != 3 {
		t.Fatalf("len(Importances) = %d, want 3", len(result.Importances))
	}
	// strong はターゲットと完全相関なので正規化後の重要度は 1
	top := result.Importances[0]
	if top.Feature != "strong" {
		t.Errorf("top feature = %q, want %q", top.Feature, "strong")
	}
	if math.Abs(top.Importance-1) > 1e-9 {
		t.Errorf("top importance = %v, want 1", top.Importance)
	}
	if math.Abs(top.CorrelationWithTarget-1) > 1e-9 {
		t.Errorf("top correlation = %v, want 1", top.CorrelationWithTarget)
	}
}

func TestAnalyzeDropsNearConstant(t *testing.T) {
	result := NewAnalyzer().Analyze(processedFixture())

	found := false
	for _, f := range result.DroppedFeatures {
		if f == "constant" {
			found = true
		}
	}
	if !found {
		t.Errorf("DroppedFeatures = %v, want to contain %q", result.DroppedFeatures, "constant")
	}
	for _, f := range result.RecommendedFeatures {
		if f == "constant" {
			t.Errorf("RecommendedFeatures = %v must not contain %q", result.RecommendedFeatures, "constant")
		}
	}
}

func TestAnalyzeRedundantPairs(t *testing.T) {
	n := 30
	data := make([]map[string]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		data[i] = map[string]float64{
			"a":      x,
			"twin":   2 * x,
			"other":  math.Cos(x * 3.7),
			"target": x + math.Sin(x),
		}
	}
	p := &dataset.ProcessedDataset{
		Data:     data,
		Features: []string{"a", "twin", "other"},
		Target:   "target",
	}

	result := NewAnalyzer().Analyze(p)

	if len(result.RedundantPairs) == 0 {
		t.Fatal("expected a/twin to be flagged as redundant")
	}
	pair := result.RedundantPairs[0]
	if !(pair.A == "a" && pair.B == "twin") && !(pair.A == "twin" && pair.B == "a") {
		t.Errorf("RedundantPairs[0] = %+v, want pair a/twin", pair)
	}
}

func TestAnalyzeWithoutTarget(t *testing.T) {
	n := 20
	data := make([]map[string]float64, n)
	for i := 0; i < n; i++ {
		data[i] = map[string]float64{"a": float64(i), "b": float64(i % 5)}
	}
	p := &dataset.ProcessedDataset{
		Data:     data,
		Features: []string{"a", "b"},
	}

	result := NewAnalyzer().Analyze(p)

	for _, item := range result.Importances {
		if item.Importance != 1 {
			t.Errorf("importance of %q = %v, want uniform 1 without target", item.Feature, item.Importance)
		}
	}
}
