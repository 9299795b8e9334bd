package ensemble

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/tabml/core/model"
	"github.com/YuminosukeSato/tabml/pkg/errors"
	"github.com/YuminosukeSato/tabml/tree"
)

// treeSeedStride separates the per-tree seeds so member generators never
// overlap in lockstep.
const treeSeedStride = 97

// RandomForest trains an ordered list of CART trees on independent bootstrap
// resamples, each restricted to a random feature subset per split.
type RandomForest struct {
	model.BaseEstimator

	// Hyperparameters
	task     tree.Task
	numTrees int
	seed     int64

	// Learned members, in training order
	trees      []*tree.DecisionTree
	splitGains map[string]float64
	features   []string
	target     string
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

// WithForestTask sets the task for every member tree.
func WithForestTask(task tree.Task) ForestOption {
	return func(f *RandomForest) { f.task = task }
}

// WithNumTrees overrides the derived ensemble size.
func WithNumTrees(n int) ForestOption {
	return func(f *RandomForest) { f.numTrees = n }
}

// WithSeed sets the base seed. Tree i draws from seed + i*97.
func WithSeed(seed int64) ForestOption {
	return func(f *RandomForest) { f.seed = seed }
}

// NewRandomForest creates a forest with derived defaults.
func NewRandomForest(options ...ForestOption) *RandomForest {
	f := &RandomForest{task: tree.TaskRegression, seed: 1}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// deriveNumTrees picks the ensemble size: slightly fewer trees on larger
// training sets to bound total work.
func deriveNumTrees(n int) int {
	switch {
	case n <= 1000:
		return 11
	case n <= 5000:
		return 10
	default:
		return 9
	}
}

// deriveMaxFeatures applies the standard random-forest heuristics:
// √p for classification, p/3 for regression, at least one either way.
func deriveMaxFeatures(task tree.Task, p int) int {
	var k int
	if task == tree.TaskClassification {
		k = int(math.Sqrt(float64(p)))
	} else {
		k = p / 3
	}
	if k < 1 {
		k = 1
	}
	return k
}

// Fit trains the ensemble. Each member grows on a bootstrap resample of the
// full training size drawn with its own seeded generator.
func (f *RandomForest) Fit(rows []map[string]float64, features []string, target string) error {
	if len(rows) == 0 {
		return errors.NewModelError("RandomForest.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(features) == 0 {
		return errors.NewValidationError("features", "at least one feature required", features)
	}

	numTrees := f.numTrees
	if numTrees <= 0 {
		numTrees = deriveNumTrees(len(rows))
	}
	maxFeatures := deriveMaxFeatures(f.task, len(features))

	f.trees = make([]*tree.DecisionTree, 0, numTrees)
	f.splitGains = make(map[string]float64)

	for i := 0; i < numTrees; i++ {
		rng := NewLCG(f.seed + int64(i)*treeSeedStride)
		sample := bootstrap(rows, rng)

		member := tree.NewDecisionTree(
			tree.WithTask(f.task),
			tree.WithFeatureSubsampling(maxFeatures, rng),
		)
		if err := member.Fit(sample, features, target); err != nil {
			return errors.Wrapf(err, "ensemble member %d", i)
		}
		f.trees = append(f.trees, member)

		for feature, gain := range member.SplitGains() {
			f.splitGains[feature] += gain
		}
	}

	f.features = features
	f.target = target
	f.SetFitted()
	return nil
}

// bootstrap draws len(rows) samples with replacement.
func bootstrap(rows []map[string]float64, rng *LCG) []map[string]float64 {
	sample := make([]map[string]float64, len(rows))
	for i := range sample {
		sample[i] = rows[rng.Intn(len(rows))]
	}
	return sample
}

// Trees exposes the grown members in training order.
func (f *RandomForest) Trees() []*tree.DecisionTree {
	return f.trees
}

// SplitGains returns impurity reduction summed across all member trees.
func (f *RandomForest) SplitGains() map[string]float64 {
	return f.splitGains
}

// Predict aggregates member predictions: majority vote for classification,
// arithmetic mean for regression.
func (f *RandomForest) Predict(x map[string]float64) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("RandomForest", "Predict")
	}
	if f.task == tree.TaskClassification {
		votes := make(map[float64]int)
		for _, member := range f.trees {
			p, _ := member.Predict(x)
			votes[p]++
		}
		return majorityVote(votes), nil
	}

	var sum float64
	for _, member := range f.trees {
		p, _ := member.Predict(x)
		sum += p
	}
	return sum / float64(len(f.trees)), nil
}

// PredictBatch runs Predict for every row.
func (f *RandomForest) PredictBatch(rows []map[string]float64) ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "PredictBatch")
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		p, err := f.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// majorityVote returns the most voted class; ties favor the smallest encoded
// class so repeated runs agree.
func majorityVote(votes map[float64]int) float64 {
	best := math.Inf(1)
	bestCount := -1
	for class, count := range votes {
		if count > bestCount || (count == bestCount && class < best) {
			best = class
			bestCount = count
		}
	}
	if bestCount < 0 {
		return 0
	}
	return best
}

// String returns a compact description of the fitted forest.
func (f *RandomForest) String() string {
	if !f.IsFitted() {
		return "RandomForest(unfitted)"
	}
	return fmt.Sprintf("RandomForest(trees=%d)", len(f.trees))
}
