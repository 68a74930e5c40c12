package descgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with descgo-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithInput adds the input file field to the logger.
func (l *Logger) WithInput(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("input", path),
	}
}

// WithColumns adds a descriptor-count field to the logger.
func (l *Logger) WithColumns(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", count),
	}
}

// LogLoad logs a descriptor table load.
func (l *Logger) LogLoad(ctx context.Context, path string, rows, cols int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table loaded",
			"path", path,
			"rows", rows,
			"columns", cols,
		)
	}
}

// LogFilter logs a preprocessing pass.
func (l *Logger) LogFilter(ctx context.Context, before, constant, correlated int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "preprocessing failed",
			"columns", before,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "preprocessing completed",
			"columns", before,
			"dropped_constant", constant,
			"dropped_correlated", correlated,
			"surviving", before-constant-correlated,
		)
	}
}

// LogFilterCache logs reuse of a previously written filtered table.
func (l *Logger) LogFilterCache(ctx context.Context, path string) {
	l.InfoContext(ctx, "filtered table found, skipping preprocessing",
		"path", path,
	)
}

// LogArtifact logs an artifact write or publication.
func (l *Logger) LogArtifact(ctx context.Context, name, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "artifact failed",
			"artifact", name,
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "artifact written",
			"artifact", name,
			"path", path,
		)
	}
}

// LogResult logs the outcome of the evolutionary search.
func (l *Logger) LogResult(ctx context.Context, fitness float64, cardinality uint, generations int) {
	l.InfoContext(ctx, "search finished",
		"best_fitness", fitness,
		"cardinality", cardinality,
		"generations", generations,
	)
}
