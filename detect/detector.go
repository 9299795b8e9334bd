// Package detect は生のデータセットを調べ、回帰・分類・クラスタリングのどの問題として
// 扱うべきかを判定し、既定のターゲット列と特徴量集合を提案する。
//
// 判定は常に成功する。内部で何が起きても呼び出し側には利用可能な提案が返り、
// 失敗時は低信頼度のクラスタリング既定値に縮退する。
package detect

import (
	"math"

	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/pkg/errors"
	"github.com/YuminosukeSato/tabml/pkg/log"
)

// ProblemType は検出される問題の種別
type ProblemType string

const (
	// Regression は連続値ターゲットの回帰問題
	Regression ProblemType = "regression"
	// Classification はカテゴリターゲットの分類問題
	Classification ProblemType = "classification"
	// Clustering はターゲットなしのクラスタリング問題
	Clustering ProblemType = "clustering"
)

// 分類ターゲット候補とみなすカーディナリティの範囲
const (
	minClassCardinality = 2
	maxClassCardinality = 20
)

// Detection は問題検出の結果
type Detection struct {
	ProblemType       ProblemType
	SuggestedTarget   string
	SuggestedFeatures []string
	TargetCardinality int
	Confidence        float64

	// 提案された特徴量集合の内訳
	NumericFeatures     int
	CategoricalFeatures int
}

// Detector はデータセットの問題種別を判定する
type Detector struct {
	logger log.Logger
}

// NewDetector は新しいDetectorを作成する
func NewDetector() *Detector {
	return &Detector{logger: log.NewSlogLogger().With(log.ComponentKey, "detect")}
}

// Detect はデータセットを検査して問題種別とターゲット・特徴量の提案を返す。
// 決して失敗しない。内部エラーは低信頼度のクラスタリング既定値に変換される。
func (d *Detector) Detect(ds *dataset.Dataset) Detection {
	var result Detection
	err := errors.SafeExecute("Detector.Detect", func() error {
		result = d.detect(ds)
		return nil
	})
	if err != nil {
		d.logger.Warn("problem detection failed, falling back to clustering",
			log.StageKey, "detection", log.ErrAttr(err))
		return clusteringFallback(ds, 0.2)
	}

	d.logger.Info("problem detected",
		log.StageKey, "detection",
		log.ProblemTypeKey, string(result.ProblemType),
		log.TargetKey, result.SuggestedTarget,
		log.FeaturesKey, len(result.SuggestedFeatures))
	return result
}

type candidate struct {
	column      dataset.Column
	problemType ProblemType
	score       float64
}

func (d *Detector) detect(ds *dataset.Dataset) Detection {
	n := ds.NumRows()
	if n == 0 {
		return clusteringFallback(ds, 0.2)
	}

	var best *candidate
	for _, col := range ds.Columns {
		// 識別子列（全行ユニーク）と定数列はターゲットにならない
		if col.UniqueCount == n || col.UniqueCount <= 1 {
			continue
		}

		if c := scoreColumn(ds, col, n); c != nil {
			if best == nil || c.score > best.score {
				best = c
			}
		}
	}

	if best == nil {
		return clusteringFallback(ds, 0.5)
	}

	det := Detection{
		ProblemType:       best.problemType,
		SuggestedTarget:   best.column.Name,
		TargetCardinality: best.column.UniqueCount,
		Confidence:        math.Min(best.score/100, 1),
	}
	for _, col := range ds.Columns {
		if col.Name == best.column.Name || col.UniqueCount == n || col.UniqueCount <= 1 {
			continue
		}
		det.SuggestedFeatures = append(det.SuggestedFeatures, col.Name)
		if col.Type == dataset.TypeNumber {
			det.NumericFeatures++
		} else {
			det.CategoricalFeatures++
		}
	}
	return det
}

// scoreColumn は列をターゲット候補として採点する。候補にならない列は nil を返す。
func scoreColumn(ds *dataset.Dataset, col dataset.Column, n int) *candidate {
	nonNull := 0
	numeric := 0
	for _, row := range ds.Rows {
		v := row[col.Name]
		if dataset.IsMissing(v) {
			continue
		}
		nonNull++
		if _, ok := dataset.NumericValue(v); ok {
			numeric++
		}
	}
	if nonNull == 0 {
		return nil
	}

	mostlyNumeric := float64(numeric) >= 0.85*float64(nonNull)

	if mostlyNumeric && col.UniqueCount > maxClassCardinality {
		// 回帰候補: カーディナリティが √n·10 に近いほど高スコア
		ideal := math.Sqrt(float64(n)) * 10
		score := math.Max(0, 100-math.Abs(float64(col.UniqueCount)-ideal)/float64(n)*100)
		return &candidate{column: col, problemType: Regression, score: score}
	}

	if col.UniqueCount >= minClassCardinality && col.UniqueCount <= maxClassCardinality {
		score := 90 - 2*float64(col.UniqueCount)
		return &candidate{column: col, problemType: Classification, score: score}
	}

	return nil
}

// clusteringFallback はターゲット候補が見つからない場合の既定値を組み立てる。
// 先頭20行のうち10以上が数値としてパースできる列を特徴量として提案する。
func clusteringFallback(ds *dataset.Dataset, confidence float64) Detection {
	det := Detection{
		ProblemType: Clustering,
		Confidence:  confidence,
	}
	if ds == nil {
		return det
	}

	probe := len(ds.Rows)
	if probe > 20 {
		probe = 20
	}
	for _, col := range ds.Columns {
		numeric := 0
		for _, row := range ds.Rows[:probe] {
			v := row[col.Name]
			if dataset.IsMissing(v) {
				continue
			}
			if _, ok := dataset.NumericValue(v); ok {
				numeric++
			}
		}
		if numeric >= 10 {
			det.SuggestedFeatures = append(det.SuggestedFeatures, col.Name)
			det.NumericFeatures++
		}
	}
	return det
}
