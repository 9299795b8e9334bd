package automl

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/detect"
	"github.com/YuminosukeSato/tabml/pkg/log"
	"github.com/YuminosukeSato/tabml/tree"
)

const (
	defaultSplitRatio = 0.8
	defaultBaseSeed   = 42
)

// ProgressCallback receives a completion percentage and a human-readable
// message between pipeline stages. It is a cooperative checkpoint for callers
// that drive a UI; it never affects the training result.
type ProgressCallback func(percent int, message string)

// ModelSelector runs the candidate trainers for a detected problem type and
// flags the best result.
//
// For regression and classification exactly three candidates are trained:
// the linear family, a single decision tree, and a random forest. For
// clustering only k-means runs. Ranking uses R² for regression and macro F1
// for classification; ties favor the earliest-trained candidate.
type ModelSelector struct {
	splitRatio float64
	baseSeed   int64
	progress   ProgressCallback
	logger     log.Logger
}

// SelectorOption configures a ModelSelector.
type SelectorOption func(*ModelSelector)

// WithSplitRatio sets the train fraction of the deterministic split.
func WithSplitRatio(ratio float64) SelectorOption {
	return func(s *ModelSelector) { s.splitRatio = ratio }
}

// WithBaseSeed sets the base seed for the random forest's bootstrap RNG.
func WithBaseSeed(seed int64) SelectorOption {
	return func(s *ModelSelector) { s.baseSeed = seed }
}

// WithProgress installs a progress callback.
func WithProgress(cb ProgressCallback) SelectorOption {
	return func(s *ModelSelector) { s.progress = cb }
}

// NewModelSelector creates a selector with the pipeline defaults.
func NewModelSelector(options ...SelectorOption) *ModelSelector {
	s := &ModelSelector{
		splitRatio: defaultSplitRatio,
		baseSeed:   defaultBaseSeed,
		logger:     log.NewSlogLogger().With(log.ComponentKey, "automl"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Run trains the candidates for the given problem type and returns the
// ranked comparison. The processed dataset is read-only throughout.
func (s *ModelSelector) Run(p *dataset.ProcessedDataset, problem detect.ProblemType) (*ComparisonResult, error) {
	started := time.Now()
	s.logger.Info("model selection started",
		log.ProblemTypeKey, string(problem),
		log.RowsKey, p.NumRows(),
		log.FeaturesKey, len(p.Features),
	)

	var results []*ModelResult
	var err error
	switch problem {
	case detect.Regression:
		results, err = s.runSupervised(p, tree.TaskRegression)
	case detect.Classification:
		results, err = s.runSupervised(p, tree.TaskClassification)
	default:
		results, err = s.runClustering(p)
	}
	if err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].Score() > results[best].Score() {
			best = i
		}
	}
	results[best].IsTopModel = true

	s.report(100, "model selection complete")
	s.logger.Info("model selection finished",
		log.AlgorithmKey, string(results[best].Algorithm),
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return &ComparisonResult{Results: results, BestIndex: best}, nil
}

func (s *ModelSelector) runSupervised(p *dataset.ProcessedDataset, task tree.Task) ([]*ModelResult, error) {
	type stage struct {
		algorithm Algorithm
		train     func() (*ModelResult, error)
	}
	stages := []stage{
		{AlgorithmDecisionTree, func() (*ModelResult, error) { return trainTree(p, task, s.splitRatio) }},
		{AlgorithmRandomForest, func() (*ModelResult, error) { return trainForest(p, task, s.baseSeed, s.splitRatio) }},
	}
	if task == tree.TaskRegression {
		linear := stage{AlgorithmLinearRegression, func() (*ModelResult, error) { return trainLinear(p, s.splitRatio) }}
		stages = append([]stage{linear}, stages...)
	} else {
		logistic := stage{AlgorithmLogisticRegression, func() (*ModelResult, error) { return trainLogistic(p, s.splitRatio) }}
		stages = append([]stage{logistic}, stages...)
	}

	results := make([]*ModelResult, 0, len(stages))
	for i, st := range stages {
		s.report(i*100/len(stages), fmt.Sprintf("training %s", st.algorithm))
		started := time.Now()
		r, err := st.train()
		if err != nil {
			return nil, err
		}
		s.logModel(r, time.Since(started))
		results = append(results, r)
	}
	return results, nil
}

func (s *ModelSelector) runClustering(p *dataset.ProcessedDataset) ([]*ModelResult, error) {
	s.report(0, fmt.Sprintf("training %s", AlgorithmKMeans))
	started := time.Now()
	r, err := trainKMeans(p)
	if err != nil {
		return nil, err
	}
	s.logModel(r, time.Since(started))
	return []*ModelResult{r}, nil
}

func (s *ModelSelector) report(percent int, message string) {
	if s.progress != nil {
		s.progress(percent, message)
	}
	s.logger.Debug("progress", log.ProgressKey, percent, log.OperationKey, message)
}

func (s *ModelSelector) logModel(r *ModelResult, elapsed time.Duration) {
	attrs := []any{
		log.AlgorithmKey, string(r.Algorithm),
		log.DurationMsKey, elapsed.Milliseconds(),
	}
	switch {
	case r.Regression != nil:
		attrs = append(attrs, log.R2Key, r.Regression.R2)
	case r.Classification != nil:
		attrs = append(attrs, log.F1Key, r.Classification.F1, log.AccuracyKey, r.Classification.Accuracy)
	case r.Clustering != nil:
		attrs = append(attrs, log.InertiaKey, r.Clustering.Inertia)
	}
	s.logger.Info("candidate trained", attrs...)
}
