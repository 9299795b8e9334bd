package automl

import (
	"fmt"

	"github.com/YuminosukeSato/tabml/pkg/log"
)

// ProgressEvent is one recorded progress notification.
type ProgressEvent struct {
	Percent int
	Message string
}

// PrintProgress returns a callback that prints each progress update.
func PrintProgress() ProgressCallback {
	return func(percent int, message string) {
		fmt.Printf("[%3d%%] %s\n", percent, message)
	}
}

// LogProgress returns a callback that logs each progress update through the
// given structured logger.
func LogProgress(logger log.Logger) ProgressCallback {
	return func(percent int, message string) {
		logger.Info(message, log.ProgressKey, percent)
	}
}

// RecordProgress returns a callback that appends every update to history.
// Intended for tests and UIs that replay the training timeline.
func RecordProgress(history *[]ProgressEvent) ProgressCallback {
	return func(percent int, message string) {
		*history = append(*history, ProgressEvent{Percent: percent, Message: message})
	}
}

// ChainProgress fans one update out to several callbacks in order.
func ChainProgress(callbacks ...ProgressCallback) ProgressCallback {
	return func(percent int, message string) {
		for _, cb := range callbacks {
			if cb != nil {
				cb(percent, message)
			}
		}
	}
}
