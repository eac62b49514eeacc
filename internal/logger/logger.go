package logger

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options selects the level and destination of a logger. It mirrors
// config.LoggingConfig so this package stays free of config imports.
type Options struct {
	Level string
	// Output is "stdout" (default), "stderr", "console" or "file".
	Output    string
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

type contextKey string

const (
	loggerKey        contextKey = "logger"
	correlationIDKey contextKey = "correlation_id"
)

// New creates a zerolog.Logger with the specified level and JSON output.
// If the level string is invalid, it defaults to info.
func New(level string) zerolog.Logger {
	return newLogger(os.Stdout, level)
}

// NewFromOptions creates a logger writing to the destination named by
// opts.Output:
//   - "file": rotating file via lumberjack
//   - "console": human readable output on stderr, for the CLI
//   - "stderr": JSON on stderr
//   - anything else: JSON on stdout
func NewFromOptions(opts Options) zerolog.Logger {
	var writer io.Writer
	switch opts.Output {
	case "file":
		writer = NewFileWriter(FileConfig{
			Path:      opts.FilePath,
			MaxSizeMB: opts.MaxSizeMB,
			MaxFiles:  opts.MaxFiles,
		})
	case "console":
		writer = zerolog.ConsoleWriter{Out: os.Stderr}
	case "stderr":
		writer = os.Stderr
	default:
		writer = os.Stdout
	}
	return newLogger(writer, opts.Level)
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithCorrelationID stores a correlation ID in the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext retrieves the correlation ID from the context.
// Returns an empty string if not set.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext retrieves the logger from the context, tagged with the
// correlation ID when one is present. Without a stored logger an
// info-level stdout logger is returned.
func FromContext(ctx context.Context) zerolog.Logger {
	var log zerolog.Logger

	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		log = l
	} else {
		log = New("info")
	}

	if id := CorrelationIDFromContext(ctx); id != "" {
		log = log.With().Str("correlation_id", id).Logger()
	}

	return log
}

// NewCorrelationID generates a new UUID-based correlation ID.
func NewCorrelationID() string {
	return uuid.New().String()
}
