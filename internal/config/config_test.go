// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatestack/backend/internal/auth"
	"github.com/templatestack/backend/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"JWT_SECRET", "JWT_EXPIRES_IN", "SESSION_TTL_HOURS", "SESSION_SWEEP_INTERVAL",
		"DATABASE_URL", "BCRYPT_COST", "HASH_CONCURRENCY", "METRICS_ADDR",
		"LOG_LEVEL", "LOG_FORMAT", "NODE_ENV",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.JWTSecret)
	assert.Equal(t, "7d", cfg.JWTExpiresIn)
	assert.Equal(t, 12, cfg.SessionTTLHours)
	assert.Equal(t, "10m", cfg.SessionSweepInterval)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 0, cfg.HashConcurrency)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "development", cfg.Env)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
jwt_secret: file-secret-file-secret-file-secret
jwt_expires_in: 1d
session_ttl_hours: 6
log_level: info
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := config.Load(newFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "file-secret-file-secret-file-secret", cfg.JWTSecret)
		assert.Equal(t, "1d", cfg.JWTExpiresIn)
		assert.Equal(t, 6, cfg.SessionTTLHours)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat, "unset keys keep flag defaults")
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("SESSION_TTL_HOURS", "24")
		t.Setenv("LOG_LEVEL", "warn")
		cfg, err := config.Load(newFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, 24, cfg.SessionTTLHours)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "1d", cfg.JWTExpiresIn)
	})

	t.Run("explicit flags override environment", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")
		cfg, err := config.Load(newFlags(t, "--config", path, "--log-level", "trace", "--env", "production"))
		require.NoError(t, err)
		assert.Equal(t, "trace", cfg.LogLevel)
		assert.Equal(t, "production", cfg.Env)
	})

	t.Run("unrelated environment variables are ignored", func(t *testing.T) {
		t.Setenv("LOG_LEVEL_EXTRA", "fatal")
		t.Setenv("jwt_secret", "lowercase-is-not-read-lowercase-is-not")
		cfg, err := config.Load(newFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "file-secret-file-secret-file-secret", cfg.JWTSecret)
	})
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "backend")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_format: text\n"), 0o600))

	cfg, err := config.Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)

	t.Run("explicit --config wins", func(t *testing.T) {
		path := writeFile(t, "log_format: json\n")
		cfg, err := config.Load(newFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.LogFormat)
	})
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
	})

	t.Run("unknown key is rejected by schema", func(t *testing.T) {
		path := writeFile(t, "jwt_secret_typo: x\n")
		_, err := config.Load(newFlags(t, "--config", path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema validation failed")
	})

	t.Run("wrong type is rejected by schema", func(t *testing.T) {
		path := writeFile(t, "session_ttl_hours: twelve\n")
		_, err := config.Load(newFlags(t, "--config", path))
		require.Error(t, err)
	})

	t.Run("empty file is fine", func(t *testing.T) {
		path := writeFile(t, "")
		_, err := config.Load(newFlags(t, "--config", path))
		require.NoError(t, err)
	})
}

func validConfig() config.Config {
	return config.Config{
		JWTSecret:            testSecret,
		JWTExpiresIn:         "7d",
		SessionTTLHours:      12,
		SessionSweepInterval: "10m",
		BcryptCost:           12,
		MetricsAddr:          "127.0.0.1:9100",
		LogLevel:             "debug",
		LogFormat:            "json",
		Env:                  "development",
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
		assert.Equal(t, 12*time.Hour, cfg.SessionTTL())
		assert.Equal(t, 10*time.Minute, cfg.SweepInterval())
		assert.False(t, cfg.IsProduction())
	})

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"short secret", func(c *config.Config) { c.JWTSecret = strings.Repeat("x", 31) }, "JWT_SECRET"},
		{"bad token ttl", func(c *config.Config) { c.JWTExpiresIn = "seven days" }, "JWT_EXPIRES_IN"},
		{"zero token ttl", func(c *config.Config) { c.JWTExpiresIn = "0d" }, "JWT_EXPIRES_IN"},
		{"zero session ttl", func(c *config.Config) { c.SessionTTLHours = 0 }, "SESSION_TTL_HOURS"},
		{"bad sweep interval", func(c *config.Config) { c.SessionSweepInterval = "often" }, "SESSION_SWEEP_INTERVAL"},
		{"negative sweep interval", func(c *config.Config) { c.SessionSweepInterval = "-1m" }, "SESSION_SWEEP_INTERVAL"},
		{"bcrypt cost too low", func(c *config.Config) { c.BcryptCost = 3 }, "BCRYPT_COST"},
		{"bcrypt cost too high", func(c *config.Config) { c.BcryptCost = 32 }, "BCRYPT_COST"},
		{"negative concurrency", func(c *config.Config) { c.HashConcurrency = -1 }, "HASH_CONCURRENCY"},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"unknown env", func(c *config.Config) { c.Env = "staging" }, "NODE_ENV"},
		{"session ttl overflows", func(c *config.Config) { c.SessionTTLHours = 2562048 }, "SESSION_TTL_HOURS"},
		{"token ttl with whitespace", func(c *config.Config) { c.JWTExpiresIn = " 7d " }, "JWT_EXPIRES_IN"},
		{"weak bcrypt cost in production", func(c *config.Config) {
			c.Env = config.EnvProduction
			c.BcryptCost = 4
		}, "BCRYPT_COST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Production(t *testing.T) {
	cfg := validConfig()
	cfg.Env = config.EnvProduction
	assert.True(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())

	cfg.BcryptCost = 10
	require.NoError(t, cfg.Validate())
}

func TestValidate_LongestSessionTTL(t *testing.T) {
	cfg := validConfig()
	cfg.SessionTTLHours = 2562047
	require.NoError(t, cfg.Validate())
	assert.Positive(t, cfg.SessionTTL())
}

func TestValidate_SecretNotLogged(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = "too-short-secret"
	err := cfg.Validate()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "too-short-secret")
}

func TestRequireDatabase(t *testing.T) {
	cfg := validConfig()
	err := cfg.RequireDatabase()
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrConfiguration)

	cfg.DatabaseURL = "postgres://localhost/app"
	assert.NoError(t, cfg.RequireDatabase())
}

func TestGenerateSchema(t *testing.T) {
	data, err := config.GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, config.SchemaID, schema["$id"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"jwt_secret", "jwt_expires_in", "session_ttl_hours", "database_url", "log_level", "node_env"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, schema, "required", "every file key is optional")
}

func TestValidateFile(t *testing.T) {
	assert.NoError(t, config.ValidateFile([]byte("log_level: info\nbcrypt_cost: 10\n")))
	assert.Error(t, config.ValidateFile([]byte("log_level: loud\n")))
	assert.Error(t, config.ValidateFile([]byte("bcrypt_cost: 99\n")))
	assert.Error(t, config.ValidateFile([]byte("jwt_secret: short\n")))
	assert.Error(t, config.ValidateFile([]byte("not: [valid")))
}
