// Package tabml provides a client-resident AutoML engine for tabular data,
// designed to run entirely in-process with no server-side computation.
//
// TabML takes an arbitrary tabular dataset, detects whether it poses a
// regression, classification, or clustering problem, cleans and encodes the
// data, trains several competing model families, ranks them on a held-out
// split, and serves single-row predictions with confidence estimates and
// per-feature attributions.
//
// # Features
//
// - Automatic Problem Detection: target and feature suggestion from column statistics
// - Robust Preprocessing: imputation, label encoding, scaling, outlier reporting
// - Competing Trainers: linear/logistic regression, CART tree, random forest, k-means
// - Deterministic Training: seeded randomness and repeatable data splits
// - Explainable Predictions: confidence scores and per-feature contributions
//
// # Installation
//
// Install TabML using go get:
//
//	go get github.com/YuminosukeSato/tabml
//
// # Quick Start
//
// Here's the full pipeline on an in-memory dataset:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/tabml/automl"
//	    "github.com/YuminosukeSato/tabml/dataset"
//	    "github.com/YuminosukeSato/tabml/predict"
//	)
//
//	func main() {
//	    ds := dataset.Infer([]string{"size", "rooms", "price"}, []map[string]any{
//	        {"size": 50.0, "rooms": 2.0, "price": 200.0},
//	        {"size": 80.0, "rooms": 3.0, "price": 320.0},
//	        // ...
//	    })
//
//	    pipeline := automl.NewPipeline(automl.WithPipelineProgress(automl.PrintProgress()))
//	    result, err := pipeline.Run(ds)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    engine := predict.NewEngine(result.Comparison.Best(), result.Processed)
//	    prediction, err := engine.Predict(map[string]any{"size": 65.0, "rooms": 2.0})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(prediction.Value, prediction.Explanation)
//	}
//
// # Packages
//
// The engine is organized into several packages:
//
//   - dataset: raw and processed dataset types, scaling and label maps
//   - detect: problem type detection with target/feature suggestion
//   - preprocess: cleaning, imputation, encoding and scaling
//   - feature: correlation-based importance and redundancy analysis
//   - linearmodel: ordinary least squares and one-vs-rest logistic regression
//   - tree: CART decision tree for regression and classification
//   - ensemble: bootstrap-aggregated random forest
//   - cluster: k-means clustering
//   - metrics: regression, classification and clustering metrics
//   - automl: pipeline orchestration and model selection
//   - predict: single-row inference with confidence and attributions
//
// # Error Philosophy
//
// The pipeline prefers soft degradation over hard failure: detection falls
// back to a low-confidence clustering default, preprocessing counts rather
// than rejects bad values, and unseen categories at inference time map to
// the first training-time label with a warning instead of an error.
package tabml
