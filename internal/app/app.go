// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package app wires configuration, storage and the auth subsystem into a
// runnable process.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/templatestack/backend/internal/auth"
	"github.com/templatestack/backend/internal/auth/postgres"
	"github.com/templatestack/backend/internal/config"
	"github.com/templatestack/backend/internal/observability"
)

const (
	readinessTimeout = 2 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// Store is a user store backed by a connection that can be probed and closed.
type Store interface {
	auth.UserStore
	Ping(ctx context.Context) error
	Close()
}

// MetricsServer is the subset of observability.Server the app drives.
type MetricsServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// Deps holds injectable constructors. Nil fields use the defaults.
type Deps struct {
	// StoreFactory opens the user store. Default: postgres.Open.
	StoreFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error)

	// MetricsServerFactory builds the observability server and registers the
	// auth collectors on it. Default: observability.NewServer.
	MetricsServerFactory func(addr string, ready observability.ReadinessChecker, sessions *auth.SessionRegistry) MetricsServer
}

func (d *Deps) withDefaults(version, commit string) {
	if d.StoreFactory == nil {
		d.StoreFactory = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
			opts := postgres.DefaultConnectOptions()
			opts.Logger = logger
			return postgres.Open(ctx, cfg.DatabaseURL, opts)
		}
	}
	if d.MetricsServerFactory == nil {
		d.MetricsServerFactory = func(addr string, ready observability.ReadinessChecker, sessions *auth.SessionRegistry) MetricsServer {
			srv := observability.NewServer(addr, ready)
			auth.RegisterMetrics(srv.Registry())
			auth.RegisterSessionGauge(srv.Registry(), sessions)
			srv.SetBuildInfo(version, commit)
			return srv
		}
	}
}

// App owns the long-lived components of the backend process.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	version string
	commit  string
	deps    Deps

	store    Store
	tokens   *auth.TokenCodec
	sessions *auth.SessionRegistry
	service  *auth.Service
	sweeper  *auth.SessionSweeper
	metrics  MetricsServer
}

// Option configures an App.
type Option func(*App)

// WithDeps overrides the default constructors.
func WithDeps(deps Deps) Option {
	return func(a *App) { a.deps = deps }
}

// WithBuildInfo sets the version reported on /metrics.
func WithBuildInfo(version, commit string) Option {
	return func(a *App) {
		a.version = version
		a.commit = commit
	}
}

// New validates cfg, opens the user store and builds the auth service.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, oops.Code("APP_INIT_FAILED").Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{cfg: cfg, logger: logger, version: "dev", commit: "unknown"}
	for _, opt := range opts {
		opt(a)
	}
	a.deps.withDefaults(a.version, a.commit)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	hasher, err := auth.NewBcryptHasher(
		auth.WithCost(cfg.BcryptCost),
		auth.WithConcurrency(cfg.HashConcurrency),
	)
	if err != nil {
		return nil, err
	}
	a.tokens, err = auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, err
	}
	a.sessions = auth.NewSessionRegistry()

	a.store, err = a.deps.StoreFactory(ctx, cfg, logger)
	if err != nil {
		return nil, oops.Code("APP_INIT_FAILED").With("operation", "open user store").Wrap(err)
	}

	a.service, err = auth.NewAuthService(a.store, hasher, a.tokens, a.sessions,
		auth.WithLogger(logger),
		auth.WithSessionTTL(cfg.SessionTTL()),
	)
	if err != nil {
		a.store.Close()
		return nil, oops.Code("APP_INIT_FAILED").With("operation", "build auth service").Wrap(err)
	}

	a.sweeper = auth.NewSessionSweeper(a.sessions, cfg.SweepInterval(), logger)
	return a, nil
}

// Service returns the auth facade.
func (a *App) Service() *auth.Service { return a.service }

// Tokens returns the token codec.
func (a *App) Tokens() *auth.TokenCodec { return a.tokens }

// Sessions returns the session registry.
func (a *App) Sessions() *auth.SessionRegistry { return a.sessions }

// Ready reports whether the user store answers a ping.
func (a *App) Ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
	defer cancel()
	if err := a.store.Ping(ctx); err != nil {
		a.logger.Warn("readiness check failed", "error", err)
		return false
	}
	return true
}

// Run starts the session sweeper and, when a metrics address is configured,
// the observability server. It blocks until ctx is cancelled or the
// observability server fails, then shuts both down.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.sweeper.Start(ctx)
	defer a.sweeper.Stop()

	var serveErr <-chan error
	if a.cfg.MetricsAddr != "" {
		a.metrics = a.deps.MetricsServerFactory(a.cfg.MetricsAddr, a.Ready, a.sessions)
		errCh, err := a.metrics.Start()
		if err != nil {
			return oops.Code("APP_START_FAILED").With("addr", a.cfg.MetricsAddr).Wrap(err)
		}
		serveErr = errCh
		a.logger.Info("metrics endpoint ready", "addr", a.metrics.Addr())
	}

	a.logger.Info("backend ready",
		"env", a.cfg.Env,
		"token_ttl", a.tokens.TTL().String(),
		"session_ttl", a.cfg.SessionTTL().String(),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case err, ok := <-serveErr:
		if ok && err != nil {
			runErr = oops.Code("APP_SERVE_FAILED").Wrap(err)
		}
	}

	if a.metrics != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := a.metrics.Stop(shutdownCtx); err != nil {
			a.logger.Warn("error stopping observability server", "error", err)
		}
	}
	return runErr
}

// Close releases the user store.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
