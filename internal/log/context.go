package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger stored by WithContext, falling back to
// the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogTranxRecorded logs a successful ledger write.
func (sl *StructuredLogger) LogTranxRecorded(ctx context.Context, id int64, tid, direction, purpose, amount string, epochMillis int64) {
	fields := NewFields().
		WithTranx(id, tid, direction, purpose, amount, epochMillis).
		WithOperation(OpRecord)

	sl.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)
}

// LogOperation logs the outcome and duration of a command.
func (sl *StructuredLogger) LogOperation(ctx context.Context, operation string, durationMs int64, err error) {
	fields := NewFields().
		WithOperation(operation).
		WithDuration(durationMs, err == nil).
		WithError(err)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	sl.logger.Logger.Log(ctx, level, "Operation finished", append([]any{FieldComponent, sl.logger.component}, fields.ToSlice()...)...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
