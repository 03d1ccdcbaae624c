package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kendall-kelly/box-erp-api/config"
)

type ctxKey struct{}

// New creates a JSON slog.Logger writing to stdout at the given level.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "warn":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// FromConfig builds the application logger from configuration.
// The dotenv file the configuration came from is logged once at startup.
func FromConfig(cfg *config.Config) *slog.Logger {
	return fromConfig(os.Stdout, cfg)
}

func fromConfig(w io.Writer, cfg *config.Config) *slog.Logger {
	l := NewWithWriter(w, cfg.LogLevel)
	if cfg.EnvFile != "" {
		l.Info("configuration loaded", "file", cfg.EnvFile)
	} else {
		l.Info("no .env file found, using process environment")
	}
	return l
}

// IntoContext stores a request scoped logger.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request scoped logger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
