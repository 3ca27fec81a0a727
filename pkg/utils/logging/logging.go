package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

type ctxLoggerKey struct{}

var defaultLogger = slog.New(clog.New(
	clog.WithWriter(os.Stdout),
	clog.WithLevel(slog.LevelInfo),
))

// Default returns the process-wide logger used outside of request scope.
func Default() *slog.Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
}

// From returns the logger carried by ctx, falling back to the default logger.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return defaultLogger
}

// With returns a context carrying the given logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// Format is the log output format.
type Format int

const (
	FormatConsole Format = iota
	FormatJSON
)

// New builds a logger with the given output, level and format. Fields tagged
// `masq:"secret"` are redacted before they reach the handler.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	redact := masq.New(masq.WithTag("secret"))

	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		}))
	default:
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(redact),
		))
	}
}
