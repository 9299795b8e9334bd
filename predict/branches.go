package predict

import (
	"math"

	"github.com/YuminosukeSato/tabml/automl"
	"github.com/YuminosukeSato/tabml/pkg/errors"
	"github.com/YuminosukeSato/tabml/tree"
)

// intervalZ is the normal quantile used for the 95% prediction interval.
const intervalZ = 1.96

func (e *Engine) predictLinear(m automl.LinearModel, row map[string]float64) (*PredictionResult, error) {
	x := e.featureVector(row)
	pred, err := m.Regressor.Predict(x)
	if err != nil {
		return nil, err
	}

	contributions := weightContributions(e.processed.Features, m.Regressor.Coefficients(), x)

	rmse := e.trainingRMSE()
	spread := e.targetSpread()
	return &PredictionResult{
		Value:         pred,
		NumericValue:  pred,
		Confidence:    1 - rmse/spread,
		Interval:      &Interval{Lower: pred - intervalZ*rmse, Upper: pred + intervalZ*rmse},
		Contributions: contributions,
	}, nil
}

func (e *Engine) predictLogistic(m automl.LogisticModel, row map[string]float64) (*PredictionResult, error) {
	x := e.featureVector(row)
	scores, err := m.Classifier.Scores(x)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, errors.NewValueError("Engine.predictLogistic", "classifier has no classes")
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	label := m.Classifier.Classes()[best]

	contributions := weightContributions(e.processed.Features, m.Classifier.Weights()[best], x)

	// Confidence grows with distance from the 0.5 decision boundary.
	return &PredictionResult{
		Value:         e.decodeTarget(label),
		NumericValue:  label,
		Confidence:    2 * math.Abs(scores[best]-0.5),
		Contributions: contributions,
	}, nil
}

func (e *Engine) predictTree(m automl.TreeModel, row map[string]float64) (*PredictionResult, error) {
	root := m.Tree.Root()
	if root == nil {
		return nil, errors.NewNotFittedError("DecisionTree", "Predict")
	}
	leaf, path := root.TraversePath(row)

	byFeature := make(map[string]float64)
	accumulatePathContributions(byFeature, path, row)
	contributions := mapContributions(e.processed.Features, byFeature, row)

	result := &PredictionResult{
		NumericValue:  leaf.Prediction,
		Contributions: contributions,
	}
	if m.Task == tree.TaskClassification {
		result.Value = e.decodeTarget(leaf.Prediction)
		result.Confidence = leafClassShare(leaf)
		return result, nil
	}

	// Regression confidence combines how well-populated the leaf was with
	// how accurate the tree was on held-out data.
	density := errors.SafeDivide(float64(leaf.Samples), float64(e.result.TrainRows))
	rmse := e.trainingRMSE()
	spread := e.targetSpread()
	result.Value = leaf.Prediction
	result.Confidence = 0.5*math.Min(1, density*10) + 0.5/(1+rmse/spread)
	result.Interval = &Interval{Lower: leaf.Prediction - intervalZ*rmse, Upper: leaf.Prediction + intervalZ*rmse}
	return result, nil
}

func (e *Engine) predictForest(m automl.ForestModel, row map[string]float64) (*PredictionResult, error) {
	members := m.Forest.Trees()
	if len(members) == 0 {
		return nil, errors.NewNotFittedError("RandomForest", "Predict")
	}

	byFeature := make(map[string]float64)
	preds := make([]float64, len(members))
	for i, member := range members {
		leaf, path := member.Root().TraversePath(row)
		preds[i] = leaf.Prediction
		accumulatePathContributions(byFeature, path, row)
	}
	for f := range byFeature {
		byFeature[f] /= float64(len(members))
	}
	contributions := mapContributions(e.processed.Features, byFeature, row)

	if m.Task == tree.TaskClassification {
		votes := make(map[float64]int)
		for _, p := range preds {
			votes[p]++
		}
		winner, count := majorityVote(votes)
		return &PredictionResult{
			Value:         e.decodeTarget(winner),
			NumericValue:  winner,
			Confidence:    float64(count) / float64(len(preds)),
			Contributions: contributions,
		}, nil
	}

	mean, spread := meanAndSpread(preds)
	rmse := e.trainingRMSE()
	targetSpread := e.targetSpread()
	return &PredictionResult{
		Value:         mean,
		NumericValue:  mean,
		Confidence:    1 / (1 + spread/targetSpread + rmse/targetSpread),
		Interval:      &Interval{Lower: mean - intervalZ*rmse, Upper: mean + intervalZ*rmse},
		Contributions: contributions,
	}, nil
}

func (e *Engine) predictKMeans(m automl.KMeansModel, row map[string]float64) (*PredictionResult, error) {
	x := e.featureVector(row)
	centroids := m.Clusterer.Centroids()
	if len(centroids) == 0 {
		return nil, errors.NewNotFittedError("KMeans", "Predict")
	}

	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		d := 0.0
		for j := range x {
			diff := x[j] - centroid[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = c, d
		}
	}

	// Contribution is each dimension's displacement from the winning centroid.
	contributions := make([]Contribution, len(e.processed.Features))
	for j, f := range e.processed.Features {
		diff := x[j] - centroids[best][j]
		contributions[j] = Contribution{
			Feature:      f,
			Contribution: math.Abs(diff),
			Direction:    direction(diff),
		}
	}

	return &PredictionResult{
		Value:         best,
		NumericValue:  float64(best),
		Confidence:    1 / (1 + math.Sqrt(bestDist)),
		Contributions: contributions,
	}, nil
}

// trainingRMSE returns the held-out RMSE when regression metrics exist.
func (e *Engine) trainingRMSE() float64 {
	if e.result.Regression != nil {
		return e.result.Regression.RMSE
	}
	return 0
}

// weightContributions computes coefficient-times-input contributions for the
// linear family.
func weightContributions(features []string, weights, x []float64) []Contribution {
	contributions := make([]Contribution, len(features))
	for i, f := range features {
		v := weights[i] * x[i]
		contributions[i] = Contribution{
			Feature:      f,
			Contribution: math.Abs(v),
			Direction:    direction(v),
		}
	}
	return contributions
}

// accumulatePathContributions sums each split's displacement along one
// root-to-leaf traversal into byFeature.
func accumulatePathContributions(byFeature map[string]float64, path []*tree.Node, row map[string]float64) {
	for _, node := range path {
		byFeature[node.Feature] += math.Abs(row[node.Feature] - node.Threshold)
	}
}

// mapContributions orders accumulated per-feature influence into the stable
// feature order, with direction taken from the input's side of the splits.
func mapContributions(features []string, byFeature map[string]float64, row map[string]float64) []Contribution {
	contributions := make([]Contribution, 0, len(byFeature))
	for _, f := range features {
		c, ok := byFeature[f]
		if !ok {
			continue
		}
		contributions = append(contributions, Contribution{
			Feature:      f,
			Contribution: c,
			Direction:    direction(row[f]),
		})
	}
	return contributions
}

func leafClassShare(leaf *tree.Node) float64 {
	return errors.SafeDivide(float64(leaf.ClassCounts[leaf.Prediction]), float64(leaf.Samples))
}

func majorityVote(votes map[float64]int) (winner float64, count int) {
	first := true
	for label, n := range votes {
		if first || n > count || (n == count && label < winner) {
			winner, count = label, n
			first = false
		}
	}
	return winner, count
}

func meanAndSpread(values []float64) (mean, spread float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		spread += d * d
	}
	spread = math.Sqrt(spread / float64(len(values)))
	return mean, spread
}
