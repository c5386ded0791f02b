package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// FromContext extracts a logger from the request context, falling back to
// the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides domain-specific logging helpers.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogRecordMutation logs a successful create, update or delete.
func (sl *StructuredLogger) LogRecordMutation(ctx context.Context, op, id, date, category, amount string) {
	fields := NewFields().
		WithRecord(id, date, category, amount).
		WithOperation(op).
		ToSlice()
	sl.logger.InfoContext(ctx, "Expense record "+op+"d", fields...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithOperation(operation)
	sl.logger.ErrorContext(ctx, msg, all.ToSlice()...)
}
