package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays cfg with TODOAUTH_* environment variables. Variables
// that are not set leave the current value untouched. Malformed values
// (e.g. a duration that does not parse) panic, like the other loaders.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
