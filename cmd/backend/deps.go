// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/templatestack/backend/internal/app"
	"github.com/templatestack/backend/internal/auth"
	"github.com/templatestack/backend/internal/config"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// AppFactory builds the application from a validated config.
	// Default: app.New with the build info of this binary.
	AppFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Application, error)
}

// Application wraps the methods used from app.App.
type Application interface {
	Run(ctx context.Context) error
	Service() *auth.Service
	Close()
}

func (d *Deps) withDefaults() *Deps {
	if d == nil {
		d = &Deps{}
	}
	if d.AppFactory == nil {
		d.AppFactory = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Application, error) {
			return app.New(ctx, cfg, logger, app.WithBuildInfo(version, commit))
		}
	}
	return d
}
