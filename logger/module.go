package logger

import "go.uber.org/fx"

// Module wires the slog logger for dependency injection.
var Module = fx.Provide(FromConfig)
