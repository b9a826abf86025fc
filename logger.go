package quarry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with quarry-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithQueryID tags every record with the id of one query invocation.
func (l *Logger) WithQueryID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query_id", id),
	}
}

// WithType adds an entity type field to the logger.
func (l *Logger) WithType(typ string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", typ),
	}
}

// LogCompile logs a query compilation.
func (l *Logger) LogCompile(ctx context.Context, text string, err error) {
	if err != nil {
		l.WarnContext(ctx, "compile failed",
			"query", text,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "compile completed",
			"query", text,
		)
	}
}

// LogQuery logs a finished query invocation.
func (l *Logger) LogQuery(ctx context.Context, mode string, tuples int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"mode", mode,
			"tuples", tuples,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"mode", mode,
			"tuples", tuples,
			"duration", d,
		)
	}
}

// LogPut logs an index put.
func (l *Logger) LogPut(ctx context.Context, typ, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed",
			"type", typ,
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "put completed",
			"type", typ,
			"key", key,
		)
	}
}

// LogDelete logs an index delete.
func (l *Logger) LogDelete(ctx context.Context, typ, key string, found bool) {
	l.DebugContext(ctx, "delete completed",
		"type", typ,
		"key", key,
		"found", found,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"name", name,
			"records", records,
		)
	}
}

// LogLeakedCursors warns about cursors still open when the db is closed.
func (l *Logger) LogLeakedCursors(ctx context.Context, open int64) {
	if open > 0 {
		l.WarnContext(ctx, "closing with open cursors",
			"open_cursors", open,
		)
	}
}
