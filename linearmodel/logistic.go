package linearmodel

import (
	"fmt"
	"math"
	"sort"

	"github.com/YuminosukeSato/tabml/core/model"
	"github.com/YuminosukeSato/tabml/pkg/errors"
)

// Training defaults for batch gradient descent.
const (
	defaultLearningRate = 0.05
	defaultMaxIter      = 300

	// maxClasses caps the number of one-vs-rest classifiers trained.
	maxClasses = 10
)

// LogisticRegression is a one-vs-rest classifier trained by batch gradient
// descent minimizing cross-entropy through the sigmoid link.
type LogisticRegression struct {
	model.BaseEstimator

	// Hyperparameters
	learningRate float64
	maxIter      int

	// Learned parameters, one row per class
	classes    []float64
	weights    [][]float64
	intercepts []float64
	nFeatures  int
}

// LogisticOption configures a LogisticRegression.
type LogisticOption func(*LogisticRegression)

// WithLearningRate sets the fixed gradient descent step size.
func WithLearningRate(lr float64) LogisticOption {
	return func(m *LogisticRegression) { m.learningRate = lr }
}

// WithMaxIter sets the number of gradient descent iterations.
func WithMaxIter(iter int) LogisticOption {
	return func(m *LogisticRegression) { m.maxIter = iter }
}

// NewLogisticRegression creates a classifier with the pipeline defaults.
func NewLogisticRegression(options ...LogisticOption) *LogisticRegression {
	m := &LogisticRegression{
		learningRate: defaultLearningRate,
		maxIter:      defaultMaxIter,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Fit trains one binary classifier per class against all others.
// Class labels beyond the cap are ignored; their samples count as negatives.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != n {
		return errors.NewDimensionError("LogisticRegression.Fit", n, len(y), 0)
	}
	p := len(X[0])
	m.nFeatures = p

	m.classes = extractClasses(y)
	if len(m.classes) > maxClasses {
		m.classes = m.classes[:maxClasses]
	}

	m.weights = make([][]float64, len(m.classes))
	m.intercepts = make([]float64, len(m.classes))
	for c, class := range m.classes {
		weights := make([]float64, p)
		intercept := 0.0

		for iter := 0; iter < m.maxIter; iter++ {
			grad := make([]float64, p)
			gradIntercept := 0.0
			for i, row := range X {
				t := 0.0
				if y[i] == class {
					t = 1.0
				}
				z := intercept
				for j, v := range row {
					z += weights[j] * v
				}
				diff := sigmoid(z) - t
				for j, v := range row {
					grad[j] += diff * v
				}
				gradIntercept += diff
			}
			for j := range weights {
				weights[j] -= m.learningRate * grad[j] / float64(n)
			}
			intercept -= m.learningRate * gradIntercept / float64(n)
		}

		m.weights[c] = weights
		m.intercepts[c] = intercept
	}

	m.SetFitted()
	return nil
}

// extractClasses returns the distinct labels sorted ascending for consistency.
func extractClasses(y []float64) []float64 {
	seen := make(map[float64]struct{})
	for _, v := range y {
		seen[v] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)
	return classes
}

// Scores returns the per-class sigmoid scores for a single row.
func (m *LogisticRegression) Scores(x []float64) ([]float64, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "Scores")
	}
	if len(x) != m.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.Scores", m.nFeatures, len(x), 1)
	}
	scores := make([]float64, len(m.classes))
	for c := range m.classes {
		z := m.intercepts[c]
		for j, v := range x {
			z += m.weights[c][j] * v
		}
		scores[c] = sigmoid(z)
	}
	return scores, nil
}

// Predict returns the class with the highest sigmoid score; ties favor the
// earliest class.
func (m *LogisticRegression) Predict(x []float64) (float64, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return m.classes[best], nil
}

// PredictBatch runs Predict for every row.
func (m *LogisticRegression) PredictBatch(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		p, err := m.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Classes returns the trained class labels in score order.
func (m *LogisticRegression) Classes() []float64 {
	return m.classes
}

// Weights returns the per-class weight vectors.
func (m *LogisticRegression) Weights() [][]float64 {
	return m.weights
}

// Intercepts returns the per-class intercepts.
func (m *LogisticRegression) Intercepts() []float64 {
	return m.intercepts
}

// String returns a compact description of the fitted model.
func (m *LogisticRegression) String() string {
	if !m.IsFitted() {
		return "LogisticRegression(unfitted)"
	}
	return fmt.Sprintf("LogisticRegression(classes=%d, n_features=%d)", len(m.classes), m.nFeatures)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
