// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys consistently across detection, preprocessing, training and
// prediction enables structured analysis of pipeline runs. Keys follow a
// hierarchical naming convention (e.g. "data.rows", "pipeline.stage").

package log

// Model and operation context.
const (
	// AlgorithmKey identifies the training algorithm.
	// Values: "linear_regression", "logistic_regression", "decision_tree",
	// "random_forest", "k_means".
	AlgorithmKey = "ml.algorithm"

	// OperationKey specifies the operation being performed.
	// Standard values: OperationFit, OperationPredict, OperationTransform.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "detect", "preprocess", "automl", "predict"
	ComponentKey = "ml.component"

	// StageKey indicates the pipeline stage currently running.
	// Examples: "detection", "preprocessing", "feature_analysis",
	// "training", "selection", "inference"
	StageKey = "pipeline.stage"

	// ProblemTypeKey carries the detected problem type.
	ProblemTypeKey = "pipeline.problem_type"
)

// Standard operation values for OperationKey.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
)

// Data shape and characteristics.
const (
	// RowsKey indicates the number of rows being processed.
	RowsKey = "data.rows"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// TargetKey names the target column for supervised problems.
	TargetKey = "data.target"

	// ImputedKey counts cells filled in by imputation.
	ImputedKey = "data.imputed_cells"

	// DroppedRowsKey counts rows dropped during cleaning.
	DroppedRowsKey = "data.dropped_rows"
)

// Performance and quality metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2Key records the coefficient of determination on the held-out slice.
	R2Key = "metric.r2"

	// F1Key records the macro-averaged F1 on the held-out slice.
	F1Key = "metric.f1"

	// AccuracyKey records classification accuracy.
	AccuracyKey = "metric.accuracy"

	// InertiaKey records the k-means within-cluster sum of squares.
	InertiaKey = "metric.inertia"

	// ProgressKey records selector progress in percent.
	ProgressKey = "pipeline.progress_pct"
)
