// Package preprocess は生のデータセットを学習可能な数値行列へ変換する。
//
// 変換は決してエラーを返さない。欠損値は補完され、使えない行や列は黙って除外され、
// その全てがレポートに計数される。レポートは観測用であり学習をブロックしない。
package preprocess

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/pkg/errors"
	"github.com/YuminosukeSato/tabml/pkg/log"
)

// maxTrainingRows を超える行数は等間隔サンプリングで削減される
const maxTrainingRows = 10000

// missingRatioLimit を超える欠損率の特徴量列は学習から除外される
const missingRatioLimit = 0.8

// ImputeStrategy は数値列の欠損値補完の方式
type ImputeStrategy string

const (
	// ImputeMean は平均値で補完する
	ImputeMean ImputeStrategy = "mean"
	// ImputeMedian は中央値で補完する
	ImputeMedian ImputeStrategy = "median"
)

// Options は前処理の設定
type Options struct {
	ImputeStrategy ImputeStrategy
	Scaling        dataset.ScalingMethod
}

// Report は前処理の観測結果。学習の成否には影響しない。
type Report struct {
	TotalRows    int
	SampledRows  int
	CleanedRows  int
	DroppedRows  int
	ImputedCells int
	OutlierCount int

	// EncodedColumns はラベルエンコードされた列名
	EncodedColumns []string

	// DroppedColumns は欠損率超過で除外された特徴量列
	DroppedColumns []string

	// ImputationByColumn は列ごとに適用された補完方式
	ImputationByColumn map[string]string
}

// Preprocessor はデータセットの清浄化・補完・エンコード・スケーリングを行う
type Preprocessor struct {
	logger log.Logger
}

// NewPreprocessor は新しいPreprocessorを作成する
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{logger: log.NewSlogLogger().With(log.ComponentKey, "preprocess")}
}

// Run はデータセットを前処理し、学習用の ProcessedDataset とレポートを返す。
// targetColumn が空の場合はクラスタリング用として特徴量のみを処理する。
func (p *Preprocessor) Run(ds *dataset.Dataset, targetColumn string, featureColumns []string, opts Options) (*dataset.ProcessedDataset, *Report) {
	if opts.ImputeStrategy == "" {
		opts.ImputeStrategy = ImputeMean
	}
	if opts.Scaling == "" {
		opts.Scaling = dataset.ScalingZScore
	}

	report := &Report{
		TotalRows:          ds.NumRows(),
		ImputationByColumn: make(map[string]string),
	}

	// 1. 行数上限を超える場合は等間隔サンプリング
	rows := strideSample(ds.Rows, maxTrainingRows)
	report.SampledRows = len(rows)

	// 2. 欠損率が高すぎる特徴量列を除外
	features := make([]string, 0, len(featureColumns))
	for _, name := range featureColumns {
		if name == targetColumn {
			continue
		}
		missing := 0
		for _, row := range rows {
			if dataset.IsMissing(row[name]) {
				missing++
			}
		}
		if len(rows) > 0 && float64(missing)/float64(len(rows)) > missingRatioLimit {
			report.DroppedColumns = append(report.DroppedColumns, name)
			continue
		}
		features = append(features, name)
	}

	columns := features
	if targetColumn != "" {
		columns = append([]string{targetColumn}, features...)
	}

	// 3. 列ごとの補完値を決定し、欠損セルを埋めながら文字列/数値の中間表現を作る
	numericColumn := make(map[string]bool, len(columns))
	for _, name := range columns {
		col, ok := ds.Column(name)
		numericColumn[name] = ok && col.Type == dataset.TypeNumber
	}

	intermediate, imputed := p.impute(rows, columns, numericColumn, opts.ImputeStrategy, report)
	report.ImputedCells = imputed

	// 4. ターゲットが補完後も使えない行を除外
	if targetColumn != "" {
		kept := intermediate[:0]
		for _, row := range intermediate {
			if _, ok := row[targetColumn]; ok {
				kept = append(kept, row)
			} else {
				report.DroppedRows++
			}
		}
		intermediate = kept
	}
	report.CleanedRows = len(intermediate)

	// 5. 非数値列をラベルエンコード
	labelMaps, reverseMaps := p.encode(intermediate, columns, numericColumn, report)

	// 中間表現を完全数値の行列に落とす
	data := make([]map[string]float64, len(intermediate))
	for i, row := range intermediate {
		out := make(map[string]float64, len(columns))
		for _, name := range columns {
			v := row[name]
			if f, ok := v.(float64); ok {
				out[name] = f
				continue
			}
			s := v.(string)
			out[name] = float64(labelMaps[name][s])
		}
		data[i] = out
	}

	// 6. スケーリングパラメータを計算（std==0 と max==min はガード）
	stats := computeStats(data, columns)

	// 7. Tukey の IQR ルールで外れ値を計数（除外はしない）
	report.OutlierCount = countOutliers(data, features, numericColumn)

	// 8. 特徴量列のみスケーリング。ターゲットには決して適用しない。
	applyScaling(data, features, stats, opts.Scaling)

	// 9. 最終ガード。行列に残った非有限値は中立値 0 に置換する。
	// ProcessedDataset の全ての値は有限でなければならない。
	if repaired := p.ensureFinite(data, columns); repaired > 0 {
		report.ImputedCells += repaired
	}

	processed := &dataset.ProcessedDataset{
		Data:         data,
		Features:     features,
		Target:       targetColumn,
		Stats:        stats,
		Scaling:      opts.Scaling,
		LabelMaps:    labelMaps,
		ReverseMaps:  reverseMaps,
		OriginalRows: report.TotalRows,
	}

	p.logger.Info("preprocessing complete",
		log.StageKey, "preprocessing",
		log.RowsKey, report.CleanedRows,
		log.FeaturesKey, len(features),
		log.ImputedKey, report.ImputedCells,
		log.DroppedRowsKey, report.DroppedRows)

	return processed, report
}

// strideSample は limit を超える行列を等間隔に間引く。入力が同じなら結果も常に同じ。
func strideSample(rows []map[string]any, limit int) []map[string]any {
	n := len(rows)
	if n <= limit {
		return rows
	}
	step := (n + limit - 1) / limit
	sampled := make([]map[string]any, 0, limit)
	for i := 0; i < n && len(sampled) < limit; i += step {
		sampled = append(sampled, rows[i])
	}
	return sampled
}

// impute は欠損セルを埋めた中間表現を返す。
// 数値列の値は float64、非数値列の値は string として保持される。
// 補完値が決定できない列の値は行マップに現れない。
func (p *Preprocessor) impute(rows []map[string]any, columns []string, numericColumn map[string]bool, strategy ImputeStrategy, report *Report) ([]map[string]any, int) {
	fill := make(map[string]any, len(columns))
	for _, name := range columns {
		if numericColumn[name] {
			values := make([]float64, 0, len(rows))
			for _, row := range rows {
				if f, ok := dataset.NumericValue(row[name]); ok && !dataset.IsMissing(row[name]) {
					values = append(values, f)
				}
			}
			if len(values) == 0 {
				continue
			}
			switch strategy {
			case ImputeMedian:
				sort.Float64s(values)
				fill[name] = median(values)
				report.ImputationByColumn[name] = string(ImputeMedian)
			default:
				fill[name] = stat.Mean(values, nil)
				report.ImputationByColumn[name] = string(ImputeMean)
			}
		} else {
			counts := make(map[string]int)
			for _, row := range rows {
				if dataset.IsMissing(row[name]) {
					continue
				}
				counts[stringValue(row[name])]++
			}
			mode, best := "", -1
			for _, row := range rows {
				// 最頻値の同数タイは先に出現した値を採用する
				if dataset.IsMissing(row[name]) {
					continue
				}
				s := stringValue(row[name])
				if counts[s] > best {
					mode, best = s, counts[s]
				}
			}
			if best < 0 {
				continue
			}
			fill[name] = mode
			report.ImputationByColumn[name] = "mode"
		}
	}

	imputed := 0
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		clean := make(map[string]any, len(columns))
		for _, name := range columns {
			raw := row[name]
			if numericColumn[name] {
				if f, ok := dataset.NumericValue(raw); ok && !dataset.IsMissing(raw) {
					clean[name] = f
					continue
				}
			} else if !dataset.IsMissing(raw) {
				clean[name] = stringValue(raw)
				continue
			}
			if v, ok := fill[name]; ok {
				clean[name] = v
				imputed++
			}
		}
		out[i] = clean
	}
	return out, imputed
}

// ensureFinite は各列を検査し、非有限値があれば 0 に置換して置換数を返す。
// 置換後の 0 は z-score では平均、min-max では下限に相当する中立値となる。
func (p *Preprocessor) ensureFinite(data []map[string]float64, columns []string) int {
	repaired := 0
	vec := make([]float64, len(data))
	for _, name := range columns {
		for i, row := range data {
			vec[i] = row[name]
		}
		if errors.CheckFinite("preprocess", vec) == nil {
			continue
		}
		for _, row := range data {
			v := row[name]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[name] = 0
				repaired++
			}
		}
	}
	if repaired > 0 {
		p.logger.Warn("non-finite values repaired in processed matrix",
			log.StageKey, "preprocessing",
			"repaired_cells", repaired)
	}
	return repaired
}

// encode は非数値列の全ての distinct 値を辞書順にソートし 0..k-1 を割り当てる
func (p *Preprocessor) encode(rows []map[string]any, columns []string, numericColumn map[string]bool, report *Report) (map[string]map[string]int, map[string]map[int]string) {
	labelMaps := make(map[string]map[string]int)
	reverseMaps := make(map[string]map[int]string)

	for _, name := range columns {
		if numericColumn[name] {
			continue
		}
		seen := make(map[string]struct{})
		for _, row := range rows {
			if s, ok := row[name].(string); ok {
				seen[s] = struct{}{}
			}
		}
		if len(seen) == 0 {
			continue
		}
		labels := make([]string, 0, len(seen))
		for s := range seen {
			labels = append(labels, s)
		}
		sort.Strings(labels)

		forward := make(map[string]int, len(labels))
		reverse := make(map[int]string, len(labels))
		for i, s := range labels {
			forward[s] = i
			reverse[i] = s
		}
		labelMaps[name] = forward
		reverseMaps[name] = reverse
		report.EncodedColumns = append(report.EncodedColumns, name)
	}
	return labelMaps, reverseMaps
}

// computeStats はスケーリングに使う列統計を計算する。
// 下流の除算を守るため std==0 → 1、max==min → max+1 に補正する。
func computeStats(data []map[string]float64, columns []string) map[string]dataset.ColumnStats {
	stats := make(map[string]dataset.ColumnStats, len(columns))
	for _, name := range columns {
		values := make([]float64, len(data))
		for i, row := range data {
			values[i] = row[name]
		}
		st := dataset.ColumnStats{Std: 1, Max: 1}
		if len(values) > 0 {
			mean, sd := stat.MeanStdDev(values, nil)
			st.Mean = mean
			st.Std = sd
			st.Min = values[0]
			st.Max = values[0]
			for _, v := range values {
				st.Min = math.Min(st.Min, v)
				st.Max = math.Max(st.Max, v)
			}
		}
		if st.Std == 0 || math.IsNaN(st.Std) {
			st.Std = 1
		}
		if st.Max == st.Min {
			st.Max = st.Max + 1
		}
		stats[name] = st
	}
	return stats
}

// countOutliers は数値特徴量に対して 1.5×IQR のフェンスを超える値を数える
func countOutliers(data []map[string]float64, features []string, numericColumn map[string]bool) int {
	count := 0
	for _, name := range features {
		if !numericColumn[name] {
			continue
		}
		values := make([]float64, len(data))
		for i, row := range data {
			values[i] = row[name]
		}
		if len(values) < 4 {
			continue
		}
		sort.Float64s(values)
		q1 := stat.Quantile(0.25, stat.Empirical, values, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, values, nil)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr
		for _, v := range values {
			if v < lower || v > upper {
				count++
			}
		}
	}
	return count
}

// applyScaling は特徴量列に選択されたスケーリングを適用する
func applyScaling(data []map[string]float64, features []string, stats map[string]dataset.ColumnStats, method dataset.ScalingMethod) {
	if method == dataset.ScalingNone {
		return
	}
	for _, row := range data {
		for _, name := range features {
			st := stats[name]
			switch method {
			case dataset.ScalingMinMax:
				row[name] = (row[name] - st.Min) / (st.Max - st.Min)
			case dataset.ScalingZScore:
				row[name] = (row[name] - st.Mean) / st.Std
			}
		}
	}
}

// median はソート済みスライスの中央値を返す
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stringValue は非数値列の値の文字列表現を安定させる
func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := dataset.NumericValue(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return ""
}
