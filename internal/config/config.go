// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package config loads process configuration from flags, an optional YAML
// file and the environment.
//
// Precedence, lowest to highest: flag defaults, config file, environment,
// flags set on the command line. The config file is --config, or
// $XDG_CONFIG_HOME/backend/config.yaml when that exists.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/templatestack/backend/internal/xdg"
)

// Default values.
const (
	DefaultJWTExpiresIn         = "7d"
	DefaultSessionTTLHours      = 12
	DefaultSessionSweepInterval = "10m"
	DefaultBcryptCost           = 12
	DefaultMetricsAddr          = "127.0.0.1:9100"
	DefaultLogLevel             = "debug"
	DefaultLogFormat            = "json"
	DefaultEnv                  = EnvDevelopment
)

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the process configuration. Field tags name the koanf key, which
// is also the config file key.
type Config struct {
	JWTSecret            string `koanf:"jwt_secret" json:"jwt_secret,omitempty" jsonschema:"minLength=32,description=HS256 signing secret"`
	JWTExpiresIn         string `koanf:"jwt_expires_in" json:"jwt_expires_in,omitempty" jsonschema:"description=Token lifetime such as 7d or 12h"`
	SessionTTLHours      int    `koanf:"session_ttl_hours" json:"session_ttl_hours,omitempty" jsonschema:"minimum=1,maximum=2562047"`
	SessionSweepInterval string `koanf:"session_sweep_interval" json:"session_sweep_interval,omitempty" jsonschema:"description=Go duration between expired-session sweeps"`
	DatabaseURL          string `koanf:"database_url" json:"database_url,omitempty" jsonschema:"description=PostgreSQL connection URL"`
	BcryptCost           int    `koanf:"bcrypt_cost" json:"bcrypt_cost,omitempty" jsonschema:"minimum=4,maximum=31"`
	HashConcurrency      int    `koanf:"hash_concurrency" json:"hash_concurrency,omitempty" jsonschema:"minimum=0,description=Concurrent bcrypt operations; 0 means GOMAXPROCS"`
	MetricsAddr          string `koanf:"metrics_addr" json:"metrics_addr,omitempty"`
	LogLevel             string `koanf:"log_level" json:"log_level,omitempty" jsonschema:"enum=fatal,enum=error,enum=warn,enum=info,enum=debug,enum=trace"`
	LogFormat            string `koanf:"log_format" json:"log_format,omitempty" jsonschema:"enum=json,enum=text"`
	Env                  string `koanf:"node_env" json:"node_env,omitempty" jsonschema:"enum=development,enum=production,enum=test"`
}

// envKeys maps accepted environment variables to config keys.
var envKeys = map[string]string{
	"JWT_SECRET":             "jwt_secret",
	"JWT_EXPIRES_IN":         "jwt_expires_in",
	"SESSION_TTL_HOURS":      "session_ttl_hours",
	"SESSION_SWEEP_INTERVAL": "session_sweep_interval",
	"DATABASE_URL":           "database_url",
	"BCRYPT_COST":            "bcrypt_cost",
	"HASH_CONCURRENCY":       "hash_concurrency",
	"METRICS_ADDR":           "metrics_addr",
	"LOG_LEVEL":              "log_level",
	"LOG_FORMAT":             "log_format",
	"NODE_ENV":               "node_env",
}

// flagKeys maps flag names whose key differs from the dashed-to-underscored name.
var flagKeys = map[string]string{
	"env": "node_env",
}

// ConfigFileFlag is the name of the flag holding the config file path.
const ConfigFileFlag = "config"

// RegisterFlags adds the configuration flags and their defaults to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileFlag, "", "config file path (YAML)")
	fs.String("jwt-secret", "", "token signing secret (at least 32 characters)")
	fs.String("jwt-expires-in", DefaultJWTExpiresIn, "token lifetime, e.g. 7d, 12h, 30m")
	fs.Int("session-ttl-hours", DefaultSessionTTLHours, "session record lifetime in hours")
	fs.String("session-sweep-interval", DefaultSessionSweepInterval, "interval between expired-session sweeps")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.Int("bcrypt-cost", DefaultBcryptCost, "bcrypt work factor")
	fs.Int("hash-concurrency", 0, "maximum concurrent password hashes (0 = GOMAXPROCS)")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics and health listen address (empty disables)")
	fs.String("log-level", DefaultLogLevel, "log level: fatal, error, warn, info, debug, trace")
	fs.String("log-format", DefaultLogFormat, "log format: json or text")
	fs.String("env", DefaultEnv, "environment: development, production, test")
}

// Load builds a Config from fs, the config file, and the process environment.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, _ := fs.GetString(ConfigFileFlag)
	if path == "" {
		path = xdg.DefaultConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateFile(data); err != nil {
			return nil, oops.Code("CONFIG_INVALID_FILE").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	// Set flags override everything; unset flags only fill missing keys.
	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		if f.Name == ConfigFileFlag {
			return "", nil
		}
		return flagKey(f.Name), posflag.FlagVal(fs, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	return &cfg, nil
}

func envKey(name string) string {
	return envKeys[name]
}

func flagKey(name string) string {
	if k, ok := flagKeys[name]; ok {
		return k
	}
	return strings.ReplaceAll(name, "-", "_")
}
