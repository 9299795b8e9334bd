package automl

import (
	"github.com/YuminosukeSato/tabml/dataset"
	"github.com/YuminosukeSato/tabml/detect"
	"github.com/YuminosukeSato/tabml/feature"
	"github.com/YuminosukeSato/tabml/pkg/log"
	"github.com/YuminosukeSato/tabml/preprocess"
)

// Progress percentages reserved for the stages before model training.
const (
	progressDetection  = 5
	progressPreprocess = 15
	progressFeatures   = 25
	progressTraining   = 30
)

// Pipeline runs the full flow from a raw dataset to a ranked model
// comparison: detection, preprocessing, feature analysis, then selection.
// Every stage yields a progress checkpoint so a host UI can stay responsive.
type Pipeline struct {
	impute     preprocess.ImputeStrategy
	scaling    dataset.ScalingMethod
	splitRatio float64
	baseSeed   int64
	progress   ProgressCallback
	logger     log.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithImputeStrategy sets the missing-value imputation strategy.
func WithImputeStrategy(s preprocess.ImputeStrategy) PipelineOption {
	return func(p *Pipeline) { p.impute = s }
}

// WithScaling sets the feature scaling method.
func WithScaling(m dataset.ScalingMethod) PipelineOption {
	return func(p *Pipeline) { p.scaling = m }
}

// WithPipelineSplitRatio sets the train fraction of the deterministic split.
func WithPipelineSplitRatio(ratio float64) PipelineOption {
	return func(p *Pipeline) { p.splitRatio = ratio }
}

// WithPipelineSeed sets the base seed for the random forest stage.
func WithPipelineSeed(seed int64) PipelineOption {
	return func(p *Pipeline) { p.baseSeed = seed }
}

// WithPipelineProgress installs a progress callback spanning all stages.
func WithPipelineProgress(cb ProgressCallback) PipelineOption {
	return func(p *Pipeline) { p.progress = cb }
}

// NewPipeline creates a pipeline with mean imputation and z-score scaling.
func NewPipeline(options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		impute:     preprocess.ImputeMean,
		scaling:    dataset.ScalingZScore,
		splitRatio: defaultSplitRatio,
		baseSeed:   defaultBaseSeed,
		logger:     log.NewSlogLogger().With(log.ComponentKey, "automl"),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// PipelineResult aggregates every stage's output for one training session.
// The processed dataset must stay alive for later prediction calls.
type PipelineResult struct {
	Detection  detect.Detection
	Report     *preprocess.Report
	Features   *feature.Result
	Comparison *ComparisonResult
	Processed  *dataset.ProcessedDataset
}

// Run executes the full pipeline on a raw dataset.
func (p *Pipeline) Run(ds *dataset.Dataset) (*PipelineResult, error) {
	p.report(0, "detecting problem type")
	detection := detect.NewDetector().Detect(ds)
	p.logger.Info("problem detected",
		log.StageKey, "detection",
		log.ProblemTypeKey, string(detection.ProblemType),
		log.TargetKey, detection.SuggestedTarget,
	)

	p.report(progressDetection, "preprocessing dataset")
	processed, report := preprocess.NewPreprocessor().Run(ds, detection.SuggestedTarget, detection.SuggestedFeatures, preprocess.Options{
		ImputeStrategy: p.impute,
		Scaling:        p.scaling,
	})

	p.report(progressPreprocess, "analyzing features")
	features := feature.NewAnalyzer().Analyze(processed)

	p.report(progressFeatures, "training candidate models")
	selector := NewModelSelector(
		WithSplitRatio(p.splitRatio),
		WithBaseSeed(p.baseSeed),
		WithProgress(p.scaledProgress()),
	)
	comparison, err := selector.Run(processed, detection.ProblemType)
	if err != nil {
		return nil, err
	}

	p.report(100, "pipeline complete")
	return &PipelineResult{
		Detection:  detection,
		Report:     report,
		Features:   features,
		Comparison: comparison,
		Processed:  processed,
	}, nil
}

// scaledProgress maps the selector's 0-100 range into the slice of the
// overall timeline reserved for training.
func (p *Pipeline) scaledProgress() ProgressCallback {
	if p.progress == nil {
		return nil
	}
	span := 100 - progressTraining
	return func(percent int, message string) {
		p.progress(progressTraining+percent*span/100, message)
	}
}

func (p *Pipeline) report(percent int, message string) {
	if p.progress != nil {
		p.progress(percent, message)
	}
	p.logger.Debug("progress", log.ProgressKey, percent, log.OperationKey, message)
}
