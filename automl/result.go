// Package automl orchestrates the training pipeline: it runs the competing
// trainers on a processed dataset, scores each on a deterministic held-out
// split, and flags the best candidate. Consumers read the resulting
// ComparisonResult; single-row inference lives in the predict package.
package automl

import (
	"github.com/YuminosukeSato/tabml/cluster"
	"github.com/YuminosukeSato/tabml/ensemble"
	"github.com/YuminosukeSato/tabml/feature"
	"github.com/YuminosukeSato/tabml/linearmodel"
	"github.com/YuminosukeSato/tabml/metrics"
	"github.com/YuminosukeSato/tabml/tree"
)

// Algorithm identifies a model family.
type Algorithm string

const (
	AlgorithmLinearRegression   Algorithm = "linear_regression"
	AlgorithmLogisticRegression Algorithm = "logistic_regression"
	AlgorithmDecisionTree       Algorithm = "decision_tree"
	AlgorithmRandomForest       Algorithm = "random_forest"
	AlgorithmKMeans             Algorithm = "k_means"
)

// Model is the tagged union over trained model families. Each variant wraps
// its fitted estimator so that prediction dispatch is a type switch.
type Model interface {
	Algorithm() Algorithm
}

// LinearModel wraps a fitted ordinary least squares regressor.
type LinearModel struct {
	Regressor *linearmodel.LinearRegression
}

func (LinearModel) Algorithm() Algorithm { return AlgorithmLinearRegression }

// LogisticModel wraps a fitted one-vs-rest logistic classifier.
type LogisticModel struct {
	Classifier *linearmodel.LogisticRegression
}

func (LogisticModel) Algorithm() Algorithm { return AlgorithmLogisticRegression }

// TreeModel wraps a single fitted CART tree.
type TreeModel struct {
	Tree *tree.DecisionTree
	Task tree.Task
}

func (TreeModel) Algorithm() Algorithm { return AlgorithmDecisionTree }

// ForestModel wraps a fitted bootstrap-aggregated forest.
type ForestModel struct {
	Forest *ensemble.RandomForest
	Task   tree.Task
}

func (ForestModel) Algorithm() Algorithm { return AlgorithmRandomForest }

// KMeansModel wraps a fitted k-means clusterer.
type KMeansModel struct {
	Clusterer *cluster.KMeans
}

func (KMeansModel) Algorithm() Algorithm { return AlgorithmKMeans }

// ModelResult is one trained candidate together with its held-out metrics and
// per-feature importances. Exactly one of the metric fields is non-nil,
// matching the problem type.
type ModelResult struct {
	Algorithm Algorithm
	Model     Model

	Regression     *metrics.RegressionMetrics
	Classification *metrics.ClassificationMetrics
	Clustering     *metrics.ClusteringMetrics

	// Importances are normalized so the top feature scores exactly 1.
	Importances []feature.ImportanceItem

	// Classes holds the declared class labels for classification results.
	Classes []float64

	TrainRows  int
	TestRows   int
	IsTopModel bool
}

// Score returns the ranking score used by the selector: R² for regression,
// macro F1 for classification, negative inertia for clustering.
func (r *ModelResult) Score() float64 {
	switch {
	case r.Regression != nil:
		return r.Regression.R2
	case r.Classification != nil:
		return r.Classification.F1
	case r.Clustering != nil:
		return -r.Clustering.Inertia
	}
	return 0
}

// ComparisonResult is the full output of one selector run.
type ComparisonResult struct {
	Results   []*ModelResult
	BestIndex int
}

// Best returns the top-flagged model result.
func (c *ComparisonResult) Best() *ModelResult {
	if c.BestIndex < 0 || c.BestIndex >= len(c.Results) {
		return nil
	}
	return c.Results[c.BestIndex]
}
