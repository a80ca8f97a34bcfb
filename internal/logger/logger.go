package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var base = zerolog.New(os.Stderr).With().Timestamp().Logger()

// InitLogging sends log output to path, or to stderr when path is empty.
// A file that cannot be opened falls back to stderr.
func InitLogging(path string) {
	var w io.Writer = os.Stderr
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			w = f
		}
	}
	base = zerolog.New(w).With().Timestamp().Logger()
	if path != "" && w == os.Stderr {
		base.Warn().Str("path", path).Msg("cannot open log file, logging to stderr")
	}
}

// SetLevel parses level ("debug", "info", ...) and applies it globally.
// Unknown levels leave the current level unchanged.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

// SetOutput replaces the log destination. Tests use it to capture output.
func SetOutput(w io.Writer) {
	base = zerolog.New(w).With().Timestamp().Logger()
}

// WithContext attaches the application logger to ctx, so that code reading
// zerolog.Ctx(ctx) logs through it.
func WithContext(ctx context.Context) context.Context {
	if zerolog.Ctx(ctx).GetLevel() != zerolog.Disabled {
		return ctx
	}
	return base.WithContext(ctx)
}

func from(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &base
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Debug().Msgf(format, args...)
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Info().Msgf(format, args...)
}

func WarnLog(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Warn().Msgf(format, args...)
}

func ErrorLog(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Error().Msgf(format, args...)
}
