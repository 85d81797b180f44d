// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package config

import (
	"math"
	"slices"
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/templatestack/backend/internal/auth"
)

// maxSessionTTLHours is the largest session lifetime a time.Duration can hold.
const maxSessionTTLHours = math.MaxInt64 / int64(time.Hour)

// minProductionBcryptCost is the lowest work factor accepted in production.
const minProductionBcryptCost = 10

var (
	logLevels  = []string{"fatal", "error", "warn", "info", "debug", "trace"}
	logFormats = []string{"json", "text"}
	envs       = []string{EnvDevelopment, EnvProduction, EnvTest}
)

// Validate checks every setting. Failures are auth ConfigurationErrors and
// are fatal at startup.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < auth.MinSecretLength {
		return invalid("JWT_SECRET must be at least 32 characters", "jwt_secret", len(c.JWTSecret))
	}
	if _, err := auth.ParseTTL(c.JWTExpiresIn); err != nil {
		return auth.Configuration("JWT_EXPIRES_IN is not a valid duration",
			oops.Code("CONFIG_INVALID").With("key", "jwt_expires_in").With("value", c.JWTExpiresIn).Wrap(err))
	}
	if c.SessionTTLHours <= 0 || int64(c.SessionTTLHours) > maxSessionTTLHours {
		return invalid("SESSION_TTL_HOURS must be positive and at most 2562047", "session_ttl_hours", c.SessionTTLHours)
	}
	if d, err := time.ParseDuration(c.SessionSweepInterval); err != nil || d <= 0 {
		return invalid("SESSION_SWEEP_INTERVAL must be a positive duration", "session_sweep_interval", c.SessionSweepInterval)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return invalid("BCRYPT_COST must be between 4 and 31", "bcrypt_cost", c.BcryptCost)
	}
	if c.HashConcurrency < 0 {
		return invalid("HASH_CONCURRENCY must not be negative", "hash_concurrency", c.HashConcurrency)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return invalid("LOG_LEVEL must be one of fatal, error, warn, info, debug, trace", "log_level", c.LogLevel)
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		return invalid("LOG_FORMAT must be json or text", "log_format", c.LogFormat)
	}
	if !slices.Contains(envs, c.Env) {
		return invalid("NODE_ENV must be development, production or test", "node_env", c.Env)
	}
	if c.IsProduction() && c.BcryptCost < minProductionBcryptCost {
		return invalid("BCRYPT_COST must be at least 10 in production", "bcrypt_cost", c.BcryptCost)
	}
	return nil
}

// RequireDatabase reports a ConfigurationError when no database URL is set.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return invalid("DATABASE_URL is required", "database_url", "")
	}
	return nil
}

// TokenTTL returns the parsed token lifetime. Call after Validate.
func (c *Config) TokenTTL() time.Duration {
	d, _ := auth.ParseTTL(c.JWTExpiresIn)
	return d
}

// SessionTTL returns the session record lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// SweepInterval returns the parsed sweep interval. Call after Validate.
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.SessionSweepInterval)
	return d
}

// IsProduction reports whether the process runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func invalid(msg, key string, value any) error {
	// The secret itself never goes into error context.
	return auth.Configuration(msg, oops.Code("CONFIG_INVALID").With("key", key).With("value", value).Errorf("%s", msg))
}
