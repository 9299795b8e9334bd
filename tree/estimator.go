package tree

import (
	"fmt"

	"github.com/YuminosukeSato/tabml/core/model"
	"github.com/YuminosukeSato/tabml/pkg/errors"
)

// DecisionTree is a CART estimator over named-column rows. It grows one binary
// tree per Fit call and exposes the grown structure for ensembling and
// inference-time traversal.
type DecisionTree struct {
	model.BaseEstimator

	// Hyperparameters
	task            Task
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	sampler         Sampler

	// Learned structure
	root       *Node
	splitGains map[string]float64
	features   []string
	target     string
}

// Option configures a DecisionTree.
type Option func(*DecisionTree)

// WithTask sets the growth criterion (regression or classification).
func WithTask(task Task) Option {
	return func(t *DecisionTree) { t.task = task }
}

// WithMaxDepth overrides the derived depth limit.
func WithMaxDepth(d int) Option {
	return func(t *DecisionTree) { t.maxDepth = d }
}

// WithMinSamplesSplit overrides the derived split threshold.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTree) { t.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTree) { t.minSamplesLeaf = n }
}

// WithFeatureSubsampling restricts each split to k randomly drawn features.
// Used by the random forest; the sampler supplies the randomness.
func WithFeatureSubsampling(k int, sampler Sampler) Option {
	return func(t *DecisionTree) {
		t.maxFeatures = k
		t.sampler = sampler
	}
}

// NewDecisionTree creates a DecisionTree with derived defaults.
func NewDecisionTree(options ...Option) *DecisionTree {
	t := &DecisionTree{task: TaskRegression, minSamplesLeaf: 1}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Fit grows the tree on the given rows. Rows must be fully numeric; the
// preprocessing layer guarantees that for ProcessedDataset data.
func (t *DecisionTree) Fit(rows []map[string]float64, features []string, target string) error {
	if len(rows) == 0 {
		return errors.NewModelError("DecisionTree.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(features) == 0 {
		return errors.NewValidationError("features", "at least one feature required", features)
	}

	t.root, t.splitGains = Grow(rows, features, target, Params{
		Task:                t.task,
		MaxDepth:            t.maxDepth,
		MinSamplesSplit:     t.minSamplesSplit,
		MinSamplesLeaf:      t.minSamplesLeaf,
		MaxFeaturesPerSplit: t.maxFeatures,
		Sampler:             t.sampler,
	})
	t.features = features
	t.target = target
	t.SetFitted()
	return nil
}

// Root exposes the grown tree for ensembling and path-based attribution.
func (t *DecisionTree) Root() *Node {
	return t.root
}

// SplitGains returns the cumulative impurity reduction per feature.
func (t *DecisionTree) SplitGains() map[string]float64 {
	return t.splitGains
}

// Predict traverses the tree for a single row.
func (t *DecisionTree) Predict(x map[string]float64) (float64, error) {
	if !t.IsFitted() {
		return 0, errors.NewNotFittedError("DecisionTree", "Predict")
	}
	return t.root.Traverse(x).Prediction, nil
}

// PredictBatch traverses the tree for every row.
func (t *DecisionTree) PredictBatch(rows []map[string]float64) ([]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTree", "PredictBatch")
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = t.root.Traverse(row).Prediction
	}
	return out, nil
}

// PredictProba returns the leaf class distribution for a classification tree.
func (t *DecisionTree) PredictProba(x map[string]float64) (map[float64]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTree", "PredictProba")
	}
	if t.task != TaskClassification {
		return nil, errors.NewValueError("DecisionTree.PredictProba", "model was not grown for classification")
	}
	leaf := t.root.Traverse(x)
	probas := make(map[float64]float64, len(leaf.ClassCounts))
	for class, count := range leaf.ClassCounts {
		probas[class] = float64(count) / float64(leaf.Samples)
	}
	return probas, nil
}

// String returns a compact description of the fitted tree.
func (t *DecisionTree) String() string {
	if !t.IsFitted() {
		return "DecisionTree(unfitted)"
	}
	return fmt.Sprintf("DecisionTree(depth=%d, leaves=%d)", t.root.Depth(), t.root.CountLeaves())
}
