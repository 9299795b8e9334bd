package preprocess

import (
	"math"
	"reflect"
	"testing"

	"github.com/YuminosukeSato/tabml/dataset"
)

const tolerance = 1e-9

func sampleDataset() *dataset.Dataset {
	rows := []map[string]any{
		{"size": 50.0, "city": "tokyo", "price": 200.0},
		{"size": 80.0, "city": "osaka", "price": 320.0},
		{"size": nil, "city": "tokyo", "price": 260.0},
		{"size": 70.0, "city": "kyoto", "price": 290.0},
		{"size": 60.0, "city": nil, "price": 240.0},
		{"size": 90.0, "city": "osaka", "price": 350.0},
	}
	return dataset.Infer([]string{"size", "city", "price"}, rows)
}

func TestRunBasic(t *testing.T) {
	processed, report := NewPreprocessor().Run(sampleDataset(), "price", []string{"size", "city"}, Options{})

	if processed.Target != "price" {
		t.Errorf("Target = %q, want %q", processed.Target, "price")
	}
	if got := len(processed.Data); got != 6 {
		t.Errorf("rows = %d, want 6", got)
	}
	if report.ImputedCells != 2 {
		t.Errorf("ImputedCells = %d, want 2", report.ImputedCells)
	}
	if !reflect.DeepEqual(report.EncodedColumns, []string{"city"}) {
		t.Errorf("EncodedColumns = %v, want [city]", report.EncodedColumns)
	}

	// ラベルは辞書順で 0..k-1 に割り当てられる
	want := map[string]int{"kyoto": 0, "osaka": 1, "tokyo": 2}
	if !reflect.DeepEqual(processed.LabelMaps["city"], want) {
		t.Errorf("LabelMaps[city] = %v, want %v", processed.LabelMaps["city"], want)
	}
}

func TestRunIdempotent(t *testing.T) {
	ds := sampleDataset()
	opts := Options{ImputeStrategy: ImputeMean, Scaling: dataset.ScalingZScore}

	first, _ := NewPreprocessor().Run(ds, "price", []string{"size", "city"}, opts)
	second, _ := NewPreprocessor().Run(ds, "price", []string{"size", "city"}, opts)

	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Error("two runs with identical input produced different data")
	}
}

func TestRunTargetNeverScaled(t *testing.T) {
	processed, _ := NewPreprocessor().Run(sampleDataset(), "price", []string{"size", "city"}, Options{Scaling: dataset.ScalingZScore})

	wantPrices := []float64{200, 320, 260, 290, 240, 350}
	for i, row := range processed.Data {
		if math.Abs(row["price"]-wantPrices[i]) > tolerance {
			t.Errorf("row %d price = %v, want untouched %v", i, row["price"], wantPrices[i])
		}
	}
}

func TestScalingRoundTrip(t *testing.T) {
	for _, method := range []dataset.ScalingMethod{dataset.ScalingZScore, dataset.ScalingMinMax} {
		t.Run(string(method), func(t *testing.T) {
			processed, _ := NewPreprocessor().Run(sampleDataset(), "price", []string{"size", "city"}, Options{Scaling: method})

			stats := processed.Stats["size"]
			original := 70.0
			scaled := processed.ScaleValue("size", original)
			recovered := processed.InverseScale("size", scaled)
			if math.Abs(recovered-original) > 1e-6 {
				t.Errorf("round trip %v -> %v -> %v (stats %+v)", original, scaled, recovered, stats)
			}
		})
	}
}

func TestRunDropsMostlyMissingColumn(t *testing.T) {
	rows := make([]map[string]any, 10)
	for i := range rows {
		rows[i] = map[string]any{"x": float64(i), "y": float64(i * 2), "mostly_missing": nil}
	}
	rows[0]["mostly_missing"] = 1.0
	ds := dataset.Infer([]string{"x", "mostly_missing", "y"}, rows)

	processed, report := NewPreprocessor().Run(ds, "y", []string{"x", "mostly_missing"}, Options{})

	if !reflect.DeepEqual(report.DroppedColumns, []string{"mostly_missing"}) {
		t.Errorf("DroppedColumns = %v, want [mostly_missing]", report.DroppedColumns)
	}
	if !reflect.DeepEqual(processed.Features, []string{"x"}) {
		t.Errorf("Features = %v, want [x]", processed.Features)
	}
}

func TestRunNonFiniteInputNeverEntersMatrix(t *testing.T) {
	// "NaN"/Inf のセルが1つでも平均を汚染すると、スケーリング後に
	// その列全体が NaN になる。非有限値は欠損と同様に補完されること。
	rows := make([]map[string]any, 21)
	for i := range rows {
		rows[i] = map[string]any{"x": float64(i), "y": float64(i) * 2}
	}
	rows[0]["x"] = "NaN"
	rows[5]["x"] = math.Inf(1)
	rows[10]["x"] = math.NaN()
	ds := dataset.Infer([]string{"x", "y"}, rows)

	processed, report := NewPreprocessor().Run(ds, "y", []string{"x"}, Options{Scaling: dataset.ScalingZScore})

	for i, row := range processed.Data {
		for name, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %d col %q = %v, 処理済み行列は有限値のみを含むこと", i, name, v)
			}
		}
	}
	if report.ImputedCells != 3 {
		t.Errorf("ImputedCells = %d, want 3", report.ImputedCells)
	}
}

func TestEnsureFinite(t *testing.T) {
	data := []map[string]float64{
		{"x": 1},
		{"x": math.NaN()},
		{"x": math.Inf(-1)},
		{"x": 4},
	}

	repaired := NewPreprocessor().ensureFinite(data, []string{"x"})

	if repaired != 2 {
		t.Errorf("repaired = %d, want 2", repaired)
	}
	for i, row := range data {
		if math.IsNaN(row["x"]) || math.IsInf(row["x"], 0) {
			t.Errorf("row %d = %v, 非有限値は中立値に置換されること", i, row["x"])
		}
	}
	if data[1]["x"] != 0 || data[2]["x"] != 0 {
		t.Errorf("置換値 = %v, %v, want 0, 0", data[1]["x"], data[2]["x"])
	}
}

func TestStrideSample(t *testing.T) {
	rows := make([]map[string]any, 25000)
	for i := range rows {
		rows[i] = map[string]any{"x": float64(i), "y": float64(i)}
	}
	ds := dataset.Infer([]string{"x", "y"}, rows)

	processed, report := NewPreprocessor().Run(ds, "y", []string{"x"}, Options{})

	if report.TotalRows != 25000 {
		t.Errorf("TotalRows = %d, want 25000", report.TotalRows)
	}
	if report.SampledRows > maxTrainingRows {
		t.Errorf("SampledRows = %d, want <= %d", report.SampledRows, maxTrainingRows)
	}
	if processed.OriginalRows != 25000 {
		t.Errorf("OriginalRows = %d, want 25000", processed.OriginalRows)
	}
}

func TestMedianImputation(t *testing.T) {
	rows := []map[string]any{
		{"x": 1.0, "y": 1.0},
		{"x": 2.0, "y": 2.0},
		{"x": nil, "y": 3.0},
		{"x": 100.0, "y": 4.0},
	}
	ds := dataset.Infer([]string{"x", "y"}, rows)

	processed, report := NewPreprocessor().Run(ds, "y", []string{"x"}, Options{ImputeStrategy: ImputeMedian, Scaling: dataset.ScalingNone})

	if report.ImputationByColumn["x"] != string(ImputeMedian) {
		t.Errorf("ImputationByColumn[x] = %q, want %q", report.ImputationByColumn["x"], ImputeMedian)
	}
	// 中央値は {1,2,100} の 2
	if math.Abs(processed.Data[2]["x"]-2) > tolerance {
		t.Errorf("imputed value = %v, want 2", processed.Data[2]["x"])
	}
}
