// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/templatestack/backend/internal/logging"
)

func newServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the backend until interrupted",
		Long: `Connect to the database, start the expired-session sweeper and serve
metrics and health probes on --metrics-addr until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, deps)
		},
	}
}

// runServeWithDeps runs the backend with injectable dependencies.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		logging.Fatal(ctx, logger, "invalid configuration", "error", err.Error())
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting backend", "version", version, "env", cfg.Env)

	application, err := deps.AppFactory(ctx, cfg, logger)
	if err != nil {
		logging.Fatal(ctx, logger, "failed to start", "error", err.Error())
		return fmt.Errorf("failed to start: %w", err)
	}
	defer application.Close()

	cmd.Println("Backend started")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("backend stopped with error: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
