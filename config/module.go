package config

import "go.uber.org/fx"

// Module exposes configuration loading to fx graphs.
var Module = fx.Provide(Load)
