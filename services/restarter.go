package services

import (
	"log/slog"
	"sync"
	"time"

	"go.uber.org/fx"
)

// ShutdownRestarter stops the fx application with a restart exit code.
// A supervisor is expected to start the process again.
type ShutdownRestarter struct {
	shutdowner fx.Shutdowner
	delay      time.Duration
	exitCode   int
	log        *slog.Logger
	once       sync.Once
}

// NewShutdownRestarter creates a ShutdownRestarter.
func NewShutdownRestarter(shutdowner fx.Shutdowner, delay time.Duration, exitCode int, log *slog.Logger) *ShutdownRestarter {
	return &ShutdownRestarter{shutdowner: shutdowner, delay: delay, exitCode: exitCode, log: log}
}

// ScheduleRestart shuts the application down after the configured delay. Only the first call counts.
func (r *ShutdownRestarter) ScheduleRestart(reason string) {
	r.once.Do(func() {
		r.log.Warn("restart scheduled",
			slog.String("reason", reason),
			slog.Duration("delay", r.delay),
			slog.Int("exit_code", r.exitCode),
		)
		time.AfterFunc(r.delay, func() {
			if err := r.shutdowner.Shutdown(fx.ExitCode(r.exitCode)); err != nil {
				r.log.Error("restart failed", slog.String("error", err.Error()))
			}
		})
	})
}
