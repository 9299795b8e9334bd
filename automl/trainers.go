package automl

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tabml/cluster"
	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/ensemble"
	"github.com/YuminosukeSato/tabml/feature"
	"github.com/YuminosukeSato/tabml/linearmodel"
	"github.com/YuminosukeSato/tabml/metrics"
	"github.com/YuminosukeSato/tabml/tree"
)

func trainLinear(p *dataset.ProcessedDataset, splitRatio float64) (*ModelResult, error) {
	train, test := p.SplitTrainTest(splitRatio)

	m := linearmodel.NewLinearRegression()
	if err := m.Fit(p.FeatureMatrix(train), p.TargetVector(train)); err != nil {
		return nil, err
	}
	preds, err := m.PredictBatch(p.FeatureMatrix(test))
	if err != nil {
		return nil, err
	}
	reg, err := metrics.EvaluateRegression(p.TargetVector(test), preds, len(p.Features))
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(p.Features))
	for i, c := range m.Coefficients() {
		weights[i] = math.Abs(c)
	}
	return &ModelResult{
		Algorithm:   AlgorithmLinearRegression,
		Model:       LinearModel{Regressor: m},
		Regression:  &reg,
		Importances: importancesFromWeights(p, train, weights),
		TrainRows:   len(train),
		TestRows:    len(test),
	}, nil
}

func trainLogistic(p *dataset.ProcessedDataset, splitRatio float64) (*ModelResult, error) {
	train, test := p.SplitTrainTest(splitRatio)

	m := linearmodel.NewLogisticRegression()
	if err := m.Fit(p.FeatureMatrix(train), p.TargetVector(train)); err != nil {
		return nil, err
	}
	preds, err := m.PredictBatch(p.FeatureMatrix(test))
	if err != nil {
		return nil, err
	}
	classes := targetClasses(p)
	cls, err := metrics.EvaluateClassification(p.TargetVector(test), preds, classes)
	if err != nil {
		return nil, err
	}

	// Importance is the mean absolute weight across the per-class classifiers.
	weights := make([]float64, len(p.Features))
	for _, classWeights := range m.Weights() {
		for j, w := range classWeights {
			weights[j] += math.Abs(w)
		}
	}
	if n := len(m.Weights()); n > 0 {
		for j := range weights {
			weights[j] /= float64(n)
		}
	}
	return &ModelResult{
		Algorithm:      AlgorithmLogisticRegression,
		Model:          LogisticModel{Classifier: m},
		Classification: &cls,
		Importances:    importancesFromWeights(p, train, weights),
		Classes:        classes,
		TrainRows:      len(train),
		TestRows:       len(test),
	}, nil
}

func trainTree(p *dataset.ProcessedDataset, task tree.Task, splitRatio float64) (*ModelResult, error) {
	train, test := p.SplitTrainTest(splitRatio)

	m := tree.NewDecisionTree(tree.WithTask(task))
	if err := m.Fit(train, p.Features, p.Target); err != nil {
		return nil, err
	}
	preds, err := m.PredictBatch(test)
	if err != nil {
		return nil, err
	}

	result := &ModelResult{
		Algorithm:   AlgorithmDecisionTree,
		Model:       TreeModel{Tree: m, Task: task},
		Importances: importancesFromGains(p, train, m.SplitGains()),
		TrainRows:   len(train),
		TestRows:    len(test),
	}
	if err := attachSupervisedMetrics(result, p, test, preds, task); err != nil {
		return nil, err
	}
	return result, nil
}

func trainForest(p *dataset.ProcessedDataset, task tree.Task, seed int64, splitRatio float64) (*ModelResult, error) {
	train, test := p.SplitTrainTest(splitRatio)

	m := ensemble.NewRandomForest(
		ensemble.WithForestTask(task),
		ensemble.WithSeed(seed),
	)
	if err := m.Fit(train, p.Features, p.Target); err != nil {
		return nil, err
	}
	preds, err := m.PredictBatch(test)
	if err != nil {
		return nil, err
	}

	result := &ModelResult{
		Algorithm:   AlgorithmRandomForest,
		Model:       ForestModel{Forest: m, Task: task},
		Importances: importancesFromGains(p, train, m.SplitGains()),
		TrainRows:   len(train),
		TestRows:    len(test),
	}
	if err := attachSupervisedMetrics(result, p, test, preds, task); err != nil {
		return nil, err
	}
	return result, nil
}

func trainKMeans(p *dataset.ProcessedDataset) (*ModelResult, error) {
	X := p.FeatureMatrix(p.Data)

	m := cluster.NewKMeans(cluster.WithK(cluster.DeriveK(len(X))))
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	sil, err := metrics.Silhouette(X, m.Assignments(), m.K())
	if err != nil {
		sil = 0
	}
	clu := metrics.ClusteringMetrics{
		K:          m.K(),
		Inertia:    m.Inertia(),
		Silhouette: sil,
	}

	// Every feature participates equally in the distance computation, so
	// importance is uninformative here and reported as uniform.
	imps := make([]feature.ImportanceItem, len(p.Features))
	for i, f := range p.Features {
		imps[i] = feature.ImportanceItem{Feature: f, Importance: 1, IsSelected: true}
	}
	return &ModelResult{
		Algorithm:   AlgorithmKMeans,
		Model:       KMeansModel{Clusterer: m},
		Clustering:  &clu,
		Importances: imps,
		TrainRows:   len(X),
	}, nil
}

func attachSupervisedMetrics(r *ModelResult, p *dataset.ProcessedDataset, test []map[string]float64, preds []float64, task tree.Task) error {
	yTrue := p.TargetVector(test)
	if task == tree.TaskRegression {
		reg, err := metrics.EvaluateRegression(yTrue, preds, len(p.Features))
		if err != nil {
			return err
		}
		r.Regression = &reg
		return nil
	}
	classes := targetClasses(p)
	cls, err := metrics.EvaluateClassification(yTrue, preds, classes)
	if err != nil {
		return err
	}
	r.Classification = &cls
	r.Classes = classes
	return nil
}

// targetClasses returns the distinct target labels over the whole processed
// dataset, sorted ascending. The declared label set must cover the test slice
// even when a rare class only appears in training rows.
func targetClasses(p *dataset.ProcessedDataset) []float64 {
	seen := make(map[float64]struct{})
	for _, row := range p.Data {
		seen[row[p.Target]] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)
	return classes
}

// importancesFromWeights builds importance items from per-feature magnitudes,
// normalized so the largest scores exactly 1.
func importancesFromWeights(p *dataset.ProcessedDataset, train []map[string]float64, weights []float64) []feature.ImportanceItem {
	maxW := 0.0
	for _, w := range weights {
		if w > maxW {
			maxW = w
		}
	}
	corr := targetCorrelations(p, train)
	items := make([]feature.ImportanceItem, len(p.Features))
	for i, f := range p.Features {
		imp := 0.0
		if maxW > 0 {
			imp = weights[i] / maxW
		}
		items[i] = feature.ImportanceItem{
			Feature:               f,
			Importance:            imp,
			CorrelationWithTarget: corr[f],
			IsSelected:            imp > 0,
		}
	}
	return items
}

// importancesFromGains builds importance items from cumulative split gains.
// Features that never produced a split are marked unselected.
func importancesFromGains(p *dataset.ProcessedDataset, train []map[string]float64, gains map[string]float64) []feature.ImportanceItem {
	maxG := 0.0
	for _, g := range gains {
		if g > maxG {
			maxG = g
		}
	}
	corr := targetCorrelations(p, train)
	items := make([]feature.ImportanceItem, len(p.Features))
	for i, f := range p.Features {
		imp := 0.0
		if maxG > 0 {
			imp = gains[f] / maxG
		}
		items[i] = feature.ImportanceItem{
			Feature:               f,
			Importance:            imp,
			CorrelationWithTarget: corr[f],
			IsSelected:            imp > 0,
		}
	}
	return items
}

func targetCorrelations(p *dataset.ProcessedDataset, rows []map[string]float64) map[string]float64 {
	y := p.TargetVector(rows)
	out := make(map[string]float64, len(p.Features))
	for _, f := range p.Features {
		x := make([]float64, len(rows))
		for i, row := range rows {
			x[i] = row[f]
		}
		r := stat.Correlation(x, y, nil)
		if math.IsNaN(r) {
			r = 0
		}
		out[f] = r
	}
	return out
}
