package automl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/detect"
)

func rawRegressionDataset(n int) *dataset.Dataset {
	rows := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		x1 := float64(i % 37)
		x2 := float64((i * 11) % 29)
		rows[i] = map[string]any{
			"x1": x1,
			"x2": x2,
			"y":  2*x1 + 3*x2 + 10,
		}
	}
	return dataset.Infer([]string{"x1", "x2", "y"}, rows)
}

func TestPipelineRun(t *testing.T) {
	var history []ProgressEvent
	pipeline := NewPipeline(WithPipelineProgress(RecordProgress(&history)))

	result, err := pipeline.Run(rawRegressionDataset(200))
	require.NoError(t, err)

	assert.Equal(t, detect.Regression, result.Detection.ProblemType)
	assert.Equal(t, "y", result.Detection.SuggestedTarget)

	require.NotNil(t, result.Report)
	assert.Equal(t, 200, result.Report.TotalRows)

	require.NotNil(t, result.Features)
	assert.NotEmpty(t, result.Features.Importances)

	require.NotNil(t, result.Comparison)
	assert.Len(t, result.Comparison.Results, 3)
	assert.NotNil(t, result.Comparison.Best())

	require.NotNil(t, result.Processed)
	assert.Equal(t, "y", result.Processed.Target)

	require.NotEmpty(t, history)
	assert.Equal(t, 0, history[0].Percent)
	assert.Equal(t, 100, history[len(history)-1].Percent)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].Percent, history[i-1].Percent)
	}
}

func TestPipelineClustering(t *testing.T) {
	// ターゲット候補が無いデータはクラスタリングに縮退する
	n := 40
	rows := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		rows[i] = map[string]any{
			"a": float64(i) * 1.0001,
			"b": float64(n-i) * 1.0001,
		}
	}
	ds := dataset.Infer([]string{"a", "b"}, rows)

	result, err := NewPipeline().Run(ds)
	require.NoError(t, err)

	assert.Equal(t, detect.Clustering, result.Detection.ProblemType)
	require.Len(t, result.Comparison.Results, 1)
	assert.Equal(t, AlgorithmKMeans, result.Comparison.Results[0].Algorithm)
}
