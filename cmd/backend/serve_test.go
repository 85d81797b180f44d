// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatestack/backend/internal/auth"
	"github.com/templatestack/backend/internal/config"
)

// fakeApp implements Application for testing.
type fakeApp struct {
	runFunc func(ctx context.Context) error
	closed  atomic.Bool
}

func (f *fakeApp) Run(ctx context.Context) error {
	if f.runFunc != nil {
		return f.runFunc(ctx)
	}
	<-ctx.Done()
	return nil
}

func (f *fakeApp) Service() *auth.Service { return nil }

func (f *fakeApp) Close() { f.closed.Store(true) }

func fakeDeps(a *fakeApp, gotCfg **config.Config) *Deps {
	return &Deps{
		AppFactory: func(_ context.Context, cfg *config.Config, _ *slog.Logger) (Application, error) {
			if gotCfg != nil {
				*gotCfg = cfg
			}
			return a, nil
		},
	}
}

func TestServe_RunsUntilContextCancelled(t *testing.T) {
	isolate(t)

	started := make(chan struct{})
	a := &fakeApp{runFunc: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}}
	var cfg *config.Config

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := execute(ctx, fakeDeps(a, &cfg), "", "serve",
			"--jwt-secret", testSecret, "--session-ttl-hours", "6", "--log-level", "error")
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("app was not run")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	assert.True(t, a.closed.Load(), "app must be closed on shutdown")
	require.NotNil(t, cfg)
	assert.Equal(t, 6*time.Hour, cfg.SessionTTL())
}

func TestServe_InvalidConfigurationIsFatal(t *testing.T) {
	isolate(t)

	called := false
	deps := &Deps{
		AppFactory: func(context.Context, *config.Config, *slog.Logger) (Application, error) {
			called = true
			return &fakeApp{}, nil
		},
	}

	_, err := execute(context.Background(), deps, "", "serve", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrConfiguration)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.False(t, called, "app must not be built from an invalid config")
}

func TestServe_AppFactoryError(t *testing.T) {
	isolate(t)

	deps := &Deps{
		AppFactory: func(context.Context, *config.Config, *slog.Logger) (Application, error) {
			return nil, errors.New("database unreachable")
		},
	}

	_, err := execute(context.Background(), deps, "", "serve", "--jwt-secret", testSecret, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestServe_RunError(t *testing.T) {
	isolate(t)

	a := &fakeApp{runFunc: func(context.Context) error {
		return errors.New("metrics listener died")
	}}

	_, err := execute(context.Background(), fakeDeps(a, nil), "", "serve", "--jwt-secret", testSecret, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics listener died")
	assert.True(t, a.closed.Load())
}

func TestServe_RejectsArguments(t *testing.T) {
	isolate(t)

	_, err := execute(context.Background(), fakeDeps(&fakeApp{}, nil), "", "serve", "extra")
	require.Error(t, err)
}
