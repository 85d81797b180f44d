// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/templatestack/backend/internal/config"
	"github.com/templatestack/backend/internal/logging"
)

const serviceName = "backend"

// NewRootCmd creates the root command for the backend CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Template backend - authentication and session service",
		Long: `The template backend verifies credentials, issues signed identity
tokens and tracks one session per user.

Configuration comes from flags, an optional YAML file (--config) and
environment variables such as JWT_SECRET and DATABASE_URL.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newUserCmd(deps))

	return cmd
}

// loadConfig reads the configuration visible to cmd. Validation is left to
// the caller since not every command needs every setting.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err //nolint:wrapcheck // oops error already carries its code
	}
	return cfg, nil
}

// setupLogging installs the process logger for cfg.
func setupLogging(cfg *config.Config) *slog.Logger {
	return logging.SetDefault(serviceName, version, cfg.LogFormat, cfg.LogLevel)
}
