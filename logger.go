package relpack

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with relpack-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// ParseLevel parses "debug", "info", "warn" or "error". An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// WithBuildID adds a build_id field to the logger.
func (l *Logger) WithBuildID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("build_id", id),
	}
}

// WithDocument adds the document path and relation name to the logger.
func (l *Logger) WithDocument(path, name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path, "relation", name),
	}
}

// LogParse logs a parsed document. Use it on a WithDocument logger.
func (l *Logger) LogParse(ctx context.Context, diagnostics int) {
	if diagnostics > 0 {
		l.WarnContext(ctx, "document has diagnostics",
			"diagnostics", diagnostics,
		)
	} else {
		l.DebugContext(ctx, "document parsed")
	}
}

// LogCompile logs a compiled relation. Use it on a WithDocument logger.
func (l *Logger) LogCompile(ctx context.Context, rows, columns, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compile failed",
			"rows", rows,
			"columns", columns,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "compile completed",
			"rows", rows,
			"columns", columns,
			"bytes", bytes,
		)
	}
}

// LogSkip logs a document whose header does not describe a usable relation.
func (l *Logger) LogSkip(ctx context.Context) {
	l.InfoContext(ctx, "document skipped")
}

// LogEmit logs an emitted artifact.
func (l *Logger) LogEmit(ctx context.Context, blob, format string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "emit failed",
			"blob", blob,
			"format", format,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "artifact emitted",
			"blob", blob,
			"format", format,
			"size", size,
		)
	}
}

// LogBuild logs the outcome of a build.
func (l *Logger) LogBuild(ctx context.Context, manifestID uint64, emitted, skipped, failed int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "build failed",
			"emitted", emitted,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "build completed with failures",
			"manifest", manifestID,
			"emitted", emitted,
			"skipped", skipped,
			"failed", failed,
		)
	default:
		l.InfoContext(ctx, "build completed",
			"manifest", manifestID,
			"emitted", emitted,
			"skipped", skipped,
		)
	}
}
