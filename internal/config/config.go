// Package config loads and validates application configuration.
//
// Configuration is environment-first: every key can be set as an env var
// (PORT, DB_PATH, JWT_SECRET, BCRYPT_COST, LOG_LEVEL), with sensible
// defaults for everything except the session secret, which has no safe
// default and must be provided. cmd/server loads an optional .env file
// before this package runs, so local development needs no exported shell
// state.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration. The mapstructure tags drive
// viper's unmarshal; the validate tags are checked once at load time so a
// misconfigured process dies at startup instead of at the first login.
type Config struct {
	Port       int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	DBPath     string `mapstructure:"db_path" validate:"required"`
	JWTSecret  string `mapstructure:"jwt_secret" validate:"required,min=16"`
	BcryptCost int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	LogLevel   string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/miniblog.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("log_level", "info")

	// BindEnv per key instead of AutomaticEnv: viper only consults the
	// environment during Unmarshal for keys it has been told about, and an
	// explicit list doubles as documentation of every knob we support.
	for _, key := range []string{"port", "db_path", "jwt_secret", "bcrypt_cost", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}
