package dataset

import (
	"math"
	"sort"
)

// ScalingMethod は特徴量スケーリングの方式
type ScalingMethod string

const (
	// ScalingMinMax は [0,1] への min-max スケーリング
	ScalingMinMax ScalingMethod = "min-max"
	// ScalingZScore は平均0・標準偏差1への標準化
	ScalingZScore ScalingMethod = "z-score"
	// ScalingNone はスケーリングなし
	ScalingNone ScalingMethod = "none"
)

// ColumnStats は列ごとのスケーリングパラメータ。
// Std==0 は 1 に、Max==Min は Max+1 に補正済みであることが不変条件。
type ColumnStats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// ProcessedDataset は前処理済みの学習データ。
// Data の全ての値は有限であり、ターゲット列はスケーリングされないまま保持される。
// 一度作成された後は全てのトレーナーと推論エンジンから読み取り専用で共有される。
type ProcessedDataset struct {
	// Data はサンプリング済み・完全数値の行列（列名→値）
	Data []map[string]float64

	// Features は特徴量列の順序付きリスト
	Features []string

	// Target はターゲット列名（クラスタリングの場合は空）
	Target string

	// Stats はスケーリング前の（エンコード後の）列統計
	Stats map[string]ColumnStats

	// Scaling は特徴量列に適用されたスケーリング方式
	Scaling ScalingMethod

	// LabelMaps は非数値列の ラベル→整数 の順方向マップ
	LabelMaps map[string]map[string]int

	// ReverseMaps は 整数→ラベル の逆方向マップ
	ReverseMaps map[string]map[int]string

	// OriginalRows はサンプリング前の行数
	OriginalRows int
}

// NumRows は前処理後の行数を返す
func (p *ProcessedDataset) NumRows() int {
	return len(p.Data)
}

// IsEncoded は列がラベルエンコードされているかどうかを返す
func (p *ProcessedDataset) IsEncoded(column string) bool {
	_, ok := p.LabelMaps[column]
	return ok
}

// ScaleValue は学習時と同じ変換で生の（エンコード済みの）値をスケーリングする。
// ターゲット列は学習時にスケーリングされていないため、常にそのまま返す。
func (p *ProcessedDataset) ScaleValue(column string, v float64) float64 {
	if column == p.Target {
		return v
	}
	st, ok := p.Stats[column]
	if !ok {
		return v
	}
	switch p.Scaling {
	case ScalingMinMax:
		return (v - st.Min) / (st.Max - st.Min)
	case ScalingZScore:
		return (v - st.Mean) / st.Std
	default:
		return v
	}
}

// InverseScale はスケーリングされた値を元のスケールに戻す
func (p *ProcessedDataset) InverseScale(column string, v float64) float64 {
	st, ok := p.Stats[column]
	if !ok {
		return v
	}
	switch p.Scaling {
	case ScalingMinMax:
		return v*(st.Max-st.Min) + st.Min
	case ScalingZScore:
		return v*st.Std + st.Mean
	default:
		return v
	}
}

// DecodeLabel はエンコード済みの整数値を元のラベル文字列に戻す。
// マップが存在しない（元々数値だった）列では ok=false を返す。
func (p *ProcessedDataset) DecodeLabel(column string, code int) (string, bool) {
	rev, ok := p.ReverseMaps[column]
	if !ok {
		return "", false
	}
	label, ok := rev[code]
	return label, ok
}

// FeatureMatrix は特徴量列を Features の順に並べた行列を返す
func (p *ProcessedDataset) FeatureMatrix(rows []map[string]float64) [][]float64 {
	X := make([][]float64, len(rows))
	for i, row := range rows {
		x := make([]float64, len(p.Features))
		for j, f := range p.Features {
			x[j] = row[f]
		}
		X[i] = x
	}
	return X
}

// TargetVector はターゲット列の値を行順に並べたベクトルを返す
func (p *ProcessedDataset) TargetVector(rows []map[string]float64) []float64 {
	y := make([]float64, len(rows))
	for i, row := range rows {
		y[i] = row[p.Target]
	}
	return y
}

// SplitTrainTest は行を値の総和による順序保存ハッシュでソートし、
// ratio の位置で訓練／テストに分割する。外部エントロピーを使わず、
// 同一入力に対して常に同一の分割を返す。
func (p *ProcessedDataset) SplitTrainTest(ratio float64) (train, test []map[string]float64) {
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.8
	}
	type keyed struct {
		sum float64
		idx int
	}
	keys := make([]keyed, len(p.Data))
	for i, row := range p.Data {
		sum := 0.0
		for j, f := range p.Features {
			// 列順に弱い重みを付けて同値行の順序も安定させる
			sum += row[f] * (1 + 1e-9*float64(j))
		}
		sum += row[p.Target]
		keys[i] = keyed{sum: sum, idx: i}
	}
	sort.SliceStable(keys, func(a, b int) bool {
		if keys[a].sum != keys[b].sum {
			return keys[a].sum < keys[b].sum
		}
		return keys[a].idx < keys[b].idx
	})

	cut := int(math.Round(float64(len(keys)) * ratio))
	if cut < 1 {
		cut = 1
	}
	if cut >= len(keys) && len(keys) > 1 {
		cut = len(keys) - 1
	}
	train = make([]map[string]float64, 0, cut)
	test = make([]map[string]float64, 0, len(keys)-cut)
	for i, k := range keys {
		if i < cut {
			train = append(train, p.Data[k.idx])
		} else {
			test = append(test, p.Data[k.idx])
		}
	}
	return train, test
}
