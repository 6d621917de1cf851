// Package logger builds the zerolog loggers shared by every command.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Component names used as the "component" field.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentBudget    = "budget"
	ComponentGoal      = "goal"
	ComponentCategory  = "category"
	ComponentMatching  = "matching"
	ComponentAssistant = "assistant"
	ComponentBackup    = "backup"
)

// Options controls how New builds a logger.
type Options struct {
	Level  string
	Pretty bool
	Out    io.Writer
}

// New creates a logger writing to opts.Out (stdout when nil). Pretty selects the
// human-readable console writer; otherwise one JSON object per line is written.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// NewWithWriter creates a JSON logger on w, mostly for tests.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithContext adds the logger to the context.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext retrieves the logger from the context, or a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}

	return zerolog.Nop()
}
