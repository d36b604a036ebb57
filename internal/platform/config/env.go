// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by the site commands.
const EnvPrefix = "FFONONS_SITE_"

// ParseEnv loads configuration from prefixed environment variables.
//
// Struct tags name the variable without the prefix, so `env:"HTTP_ADDR"`
// reads FFONONS_SITE_HTTP_ADDR.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
