package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tabmlerrors "github.com/YuminosukeSato/tabml/pkg/errors"
)

// SetupLogger configures the process-global slog default used by the pipeline.
// Log records are emitted as JSON with a stacktrace attribute extracted from
// cockroachdb/errors values, and library warnings are routed through slog.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))

	// パイプラインの警告（未知カテゴリ、収束失敗など）を構造化ログへ流す
	tabmlerrors.SetWarningHandler(func(w error) {
		slog.Warn("pipeline warning", ErrAttr(w))
	})
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts the process-global slog logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a Logger backed by the default slog logger.
func NewSlogLogger() Logger {
	return &slogLogger{logger: slog.Default()}
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.logger.Error(msg, fields...) }

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}
