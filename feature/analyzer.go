// Package feature は前処理済みの数値行列に対して相関ベースの特徴量分析を行う。
// 結果は助言的なメタデータであり、学習をブロックすることはない。
package feature

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/pkg/errors"
	"github.com/YuminosukeSato/tabml/pkg/log"
)

// nearConstantStd より小さい標準偏差の特徴量はほぼ定数とみなす
const nearConstantStd = 0.001

// redundancyThreshold を超える |r| を持つ特徴量ペアは冗長とみなす
const redundancyThreshold = 0.9

// minImportance 以下の正規化重要度の特徴量は除外候補になる
const minImportance = 0.05

// ImportanceItem は1特徴量の重要度。Importance は最大値が 1 になるよう正規化される。
type ImportanceItem struct {
	Feature               string
	Importance            float64
	CorrelationWithTarget float64
	IsSelected            bool
}

// RedundantPair は強く相関する特徴量の組
type RedundantPair struct {
	A           string
	B           string
	Correlation float64
}

// Result は特徴量分析の結果
type Result struct {
	Importances []ImportanceItem

	// CorrelationMatrix は Features の順に並んだ特徴量間相関行列
	CorrelationMatrix [][]float64

	RedundantPairs      []RedundantPair
	DroppedFeatures     []string
	RecommendedFeatures []string
}

// Analyzer は特徴量の重要度と冗長性を分析する
type Analyzer struct {
	logger log.Logger
}

// NewAnalyzer は新しいAnalyzerを作成する
func NewAnalyzer() *Analyzer {
	return &Analyzer{logger: log.NewSlogLogger().With(log.ComponentKey, "feature")}
}

// Analyze は各特徴量のターゲットとのPearson相関から重要度を計算し、
// 冗長ペアと除外候補を報告する。ターゲットが無い場合は全特徴量を等価に扱う。
func (a *Analyzer) Analyze(p *dataset.ProcessedDataset) *Result {
	result := &Result{}
	features := p.Features
	if len(features) == 0 || p.NumRows() == 0 {
		return result
	}

	columns := make(map[string][]float64, len(features))
	for _, f := range features {
		values := make([]float64, p.NumRows())
		for i, row := range p.Data {
			values[i] = row[f]
		}
		columns[f] = values
	}

	stds := make(map[string]float64, len(features))
	for _, f := range features {
		_, sd := stat.MeanStdDev(columns[f], nil)
		stds[f] = sd
	}

	// ターゲットとの相関から重要度を計算
	correlations := make(map[string]float64, len(features))
	if p.Target != "" {
		target := p.TargetVector(p.Data)
		for _, f := range features {
			correlations[f] = pearson(columns[f], target)
		}
	} else {
		for _, f := range features {
			correlations[f] = 0
		}
	}

	maxAbs := 0.0
	for _, r := range correlations {
		maxAbs = math.Max(maxAbs, math.Abs(r))
	}

	dropped := make(map[string]bool)
	for _, f := range features {
		importance := 0.0
		if p.Target == "" {
			importance = 1
		} else if maxAbs > 0 {
			importance = math.Abs(correlations[f]) / maxAbs
		}

		if stds[f] < nearConstantStd {
			dropped[f] = true
			errors.Warn(errors.NewDegenerateFeatureWarning(f, stds[f]))
		} else if p.Target != "" && importance <= minImportance {
			dropped[f] = true
		}

		result.Importances = append(result.Importances, ImportanceItem{
			Feature:               f,
			Importance:            importance,
			CorrelationWithTarget: correlations[f],
			IsSelected:            !dropped[f],
		})
	}

	// 特徴量×特徴量の全ペア相関行列と冗長ペア
	result.CorrelationMatrix = make([][]float64, len(features))
	for i, fi := range features {
		result.CorrelationMatrix[i] = make([]float64, len(features))
		for j, fj := range features {
			if i == j {
				result.CorrelationMatrix[i][j] = 1
				continue
			}
			r := pearson(columns[fi], columns[fj])
			result.CorrelationMatrix[i][j] = r
			if i < j && math.Abs(r) > redundancyThreshold {
				result.RedundantPairs = append(result.RedundantPairs, RedundantPair{A: fi, B: fj, Correlation: r})
			}
		}
	}

	for _, f := range features {
		if dropped[f] {
			result.DroppedFeatures = append(result.DroppedFeatures, f)
		} else {
			result.RecommendedFeatures = append(result.RecommendedFeatures, f)
		}
	}
	sort.Slice(result.Importances, func(i, j int) bool {
		return result.Importances[i].Importance > result.Importances[j].Importance
	})

	a.logger.Info("feature analysis complete",
		log.StageKey, "feature_analysis",
		log.FeaturesKey, len(features),
		"recommended", len(result.RecommendedFeatures),
		"redundant_pairs", len(result.RedundantPairs))

	return result
}

// pearson は欠損のないペアに対する Pearson 相関係数を返す。
// どちらかの系列が定数の場合は 0 を返す。
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
