// Package logging wraps log/slog with a JSON handler and request trace-id
// helpers shared by the HTTP and gRPC transports.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	writer io.Writer
}

func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

func New(level string, opts ...Option) (*Logger, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	writer := cfg.writer
	if writer == nil {
		writer = os.Stdout
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: parseLevel(level)})

	return &Logger{logger: slog.New(handler)}, nil
}

func MustNew(level string, opts ...Option) *Logger {
	logger, err := New(level, opts...)
	if err != nil {
		panic(err)
	}
	return logger
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger that includes the given attributes on every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With(args...)}
}

// WithTraceID attaches a request trace identifier to subsequent records.
func (l *Logger) WithTraceID(traceID string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With("traceId", traceID)}
}

type ctxLoggerKey struct{}

func (l *Logger) WithContext(ctx context.Context) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}

func FromContext(ctx context.Context) (*Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(ctxLoggerKey{}).(*Logger)
	return logger, ok
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

// AttachError appends an error attribute when err is non-nil.
func AttachError(err error, args ...any) []any {
	if err == nil {
		return args
	}
	return append(args, "error", err.Error())
}
