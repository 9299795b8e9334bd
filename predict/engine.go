// Package predict serves single-row predictions from a trained model result.
//
// The engine re-derives encoding and scaling context from the processed
// dataset the model was trained on, so both must stay alive for the session.
// Each call is stateless and returns a fresh PredictionResult.
package predict

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/YuminosukeSato/tabml/automl"
	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/pkg/errors"
	"github.com/YuminosukeSato/tabml/pkg/log"
)

// Contribution is one feature's influence on a prediction.
type Contribution struct {
	Feature      string
	Contribution float64

	// Direction is "positive" or "negative".
	Direction string
}

// Interval is an optional prediction interval for regression outputs.
type Interval struct {
	Lower float64
	Upper float64
}

// PredictionResult is the typed output of one prediction call.
type PredictionResult struct {
	// Value is the predicted target: a float64 for regression, the original
	// categorical label for an encoded classification target, or the cluster
	// index for k-means.
	Value any

	// NumericValue is the raw model output before label decoding.
	NumericValue float64

	Confidence float64
	Interval   *Interval

	// Contributions are ordered by descending absolute influence.
	Contributions []Contribution

	// Explanation names the single most influential feature.
	Explanation string
}

// Engine produces predictions from a trained model result.
type Engine struct {
	result    *automl.ModelResult
	processed *dataset.ProcessedDataset
	logger    log.Logger
}

// NewEngine creates a prediction engine bound to one trained result and the
// processed dataset it was trained on.
func NewEngine(result *automl.ModelResult, processed *dataset.ProcessedDataset) *Engine {
	return &Engine{
		result:    result,
		processed: processed,
		logger:    log.NewSlogLogger().With(log.ComponentKey, "predict"),
	}
}

// Predict encodes and scales the raw input the same way training did, then
// dispatches on the model family. Unseen categorical values fall back to the
// first training-time label; this is reported as a warning, never an error.
func (e *Engine) Predict(input map[string]any) (*PredictionResult, error) {
	row := e.encodeRow(input)

	var (
		result *PredictionResult
		err    error
	)
	switch m := e.result.Model.(type) {
	case automl.LinearModel:
		result, err = e.predictLinear(m, row)
	case automl.LogisticModel:
		result, err = e.predictLogistic(m, row)
	case automl.TreeModel:
		result, err = e.predictTree(m, row)
	case automl.ForestModel:
		result, err = e.predictForest(m, row)
	case automl.KMeansModel:
		result, err = e.predictKMeans(m, row)
	default:
		return nil, errors.NewValueError("Engine.Predict", fmt.Sprintf("unknown model family %q", e.result.Algorithm))
	}
	if err != nil {
		return nil, err
	}

	result.Confidence = errors.ClipValue(result.Confidence, 0, 1)
	sort.SliceStable(result.Contributions, func(i, j int) bool {
		return math.Abs(result.Contributions[i].Contribution) > math.Abs(result.Contributions[j].Contribution)
	})
	result.Explanation = explain(result.Contributions)

	e.logger.Debug("prediction served",
		log.AlgorithmKey, string(e.result.Algorithm),
		log.OperationKey, log.OperationPredict,
	)
	return result, nil
}

// encodeRow maps raw mixed-type input onto the scaled numeric feature space
// used during training.
func (e *Engine) encodeRow(input map[string]any) map[string]float64 {
	row := make(map[string]float64, len(e.processed.Features))
	for _, f := range e.processed.Features {
		raw, present := input[f]

		var v float64
		if labels, encoded := e.processed.LabelMaps[f]; encoded {
			v = float64(e.encodeLabel(f, labels, raw, present))
		} else {
			v = e.numericOrMean(f, raw, present)
		}
		row[f] = e.processed.ScaleValue(f, v)
	}
	return row
}

// encodeLabel resolves a categorical input through the stored label map.
// Values never seen in training map to code 0, the first-seen label.
func (e *Engine) encodeLabel(column string, labels map[string]int, raw any, present bool) int {
	if !present || dataset.IsMissing(raw) {
		return 0
	}
	s := stringValue(raw)
	if code, ok := labels[s]; ok {
		return code
	}
	fallback, _ := e.processed.DecodeLabel(column, 0)
	errors.Warn(errors.NewUnseenCategoryWarning(column, s, fallback))
	return 0
}

// numericOrMean parses a numeric input, falling back to the column's
// training-time mean for missing or unparseable values.
func (e *Engine) numericOrMean(column string, raw any, present bool) float64 {
	if present && !dataset.IsMissing(raw) {
		if v, ok := dataset.NumericValue(raw); ok {
			return v
		}
	}
	return e.processed.Stats[column].Mean
}

// featureVector orders the scaled row into the matrix layout the linear
// models were trained on.
func (e *Engine) featureVector(row map[string]float64) []float64 {
	x := make([]float64, len(e.processed.Features))
	for i, f := range e.processed.Features {
		x[i] = row[f]
	}
	return x
}

// decodeTarget converts a numeric class label back to the original
// categorical value when the target column was label-encoded.
func (e *Engine) decodeTarget(label float64) any {
	if s, ok := e.processed.DecodeLabel(e.processed.Target, int(math.Round(label))); ok {
		return s
	}
	return label
}

// targetSpread returns the training-time standard deviation of the target,
// used to put error magnitudes on a comparable scale.
func (e *Engine) targetSpread() float64 {
	std := e.processed.Stats[e.processed.Target].Std
	if std <= 0 {
		return 1
	}
	return std
}

func explain(contributions []Contribution) string {
	if len(contributions) == 0 || contributions[0].Contribution == 0 {
		return "No single feature dominated this prediction."
	}
	top := contributions[0]
	return fmt.Sprintf("The feature %q had the strongest influence on this prediction (%s).", top.Feature, top.Direction)
}

func direction(v float64) string {
	if v < 0 {
		return "negative"
	}
	return "positive"
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
