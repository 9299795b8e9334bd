package errors

import (
	"strings"
	"testing"
)

func TestWarnHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer SetWarningHandler(nil)

	warning := NewUnseenCategoryWarning("city", "nagoya", "kyoto")
	Warn(warning)

	if len(captured) != 1 {
		t.Fatalf("captured %d warnings, want 1", len(captured))
	}
	if captured[0] != warning {
		t.Errorf("captured %v, want %v", captured[0], warning)
	}
}

func TestZerologWarnFuncTakesPriority(t *testing.T) {
	handlerCalls := 0
	zerologCalls := 0
	SetWarningHandler(func(error) { handlerCalls++ })
	SetZerologWarnFunc(func(error) { zerologCalls++ })
	defer func() {
		SetWarningHandler(nil)
		SetZerologWarnFunc(nil)
	}()

	Warn(NewConvergenceWarning("KMeans", 100, ""))

	if zerologCalls != 1 || handlerCalls != 0 {
		t.Errorf("zerolog=%d handler=%d, want zerolog path only", zerologCalls, handlerCalls)
	}
}

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("LinearRegression", "Predict")

	var notFitted *NotFittedError
	if !As(err, &notFitted) {
		t.Fatal("As() failed to extract NotFittedError")
	}
	if notFitted.ModelName != "LinearRegression" {
		t.Errorf("ModelName = %q, want %q", notFitted.ModelName, "LinearRegression")
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("Error() = %q, want to mention not fitted", err.Error())
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("Fit", 3, 5, 1)

	var dim *DimensionError
	if !As(err, &dim) {
		t.Fatal("As() failed to extract DimensionError")
	}
	if dim.Expected != 3 || dim.Got != 5 {
		t.Errorf("Expected/Got = %d/%d, want 3/5", dim.Expected, dim.Got)
	}
	if !strings.Contains(err.Error(), "features") {
		t.Errorf("Error() = %q, want axis name features", err.Error())
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("KMeans.Fit", "empty data", ErrEmptyData)

	if !Is(err, ErrEmptyData) {
		t.Error("Is() must see through ModelError to ErrEmptyData")
	}
}

func TestWarningMessages(t *testing.T) {
	tests := []struct {
		name    string
		warning error
		substr  string
	}{
		{"unseen category", NewUnseenCategoryWarning("city", "nagoya", "kyoto"), "nagoya"},
		{"convergence", NewConvergenceWarning("KMeans", 100, ""), "100 iterations"},
		{"degenerate feature", NewDegenerateFeatureWarning("constant", 0), "near-zero variance"},
		{"undefined metric", NewUndefinedMetricWarning("precision", "no predicted samples", 0), "ill-defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.warning.Error(), tt.substr) {
				t.Errorf("Error() = %q, want substring %q", tt.warning.Error(), tt.substr)
			}
		})
	}
}
