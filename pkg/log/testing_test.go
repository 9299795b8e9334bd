package log

import (
	"context"
	"log/slog"
	"testing"
)

func TestTestLoggerCapture(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Info("training started", RowsKey, 100, FeaturesKey, 3)

	if buffer.Len() == 0 {
		t.Fatal("buffer is empty after logging")
	}
	if !logger.ContainsMessage("training started") {
		t.Error("ContainsMessage() failed to find logged message")
	}
	if !logger.ContainsField(RowsKey, 100) {
		t.Error("ContainsField() failed to find rows field")
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	logger, buffer := NewTestLogger(LevelWarn)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	if logger.ContainsMessage("hidden") {
		t.Error("messages below the configured level must be suppressed")
	}
	if !logger.ContainsMessage("visible") {
		t.Errorf("warn message missing from output: %q", buffer.String())
	}
}

func TestTestLoggerWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	child := logger.With(ComponentKey, "automl")
	child.Info("candidate trained")

	if !logger.ContainsField(ComponentKey, "automl") {
		t.Error("With() fields must appear in child log entries")
	}
}

func TestTestLoggerEnabled(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("Enabled(debug) = true at info level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("Enabled(error) = false at info level")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.input); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestToLogLevelInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ToLogLevel() expected panic for invalid level")
		}
	}()
	ToLogLevel("verbose")
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
