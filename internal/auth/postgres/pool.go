// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions controls how Connect waits for the database.
type ConnectOptions struct {
	// MaxRetries is how many failed pings are retried before giving up.
	MaxRetries uint64
	// BaseDelay is the first backoff delay; later delays double.
	BaseDelay time.Duration
	Logger    *slog.Logger
}

// DefaultConnectOptions returns the startup connection policy.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		MaxRetries: 5,
		BaseDelay:  250 * time.Millisecond,
		Logger:     slog.Default(),
	}
}

// Connect opens a pool for dsn and pings it, retrying with exponential
// backoff until the database answers or the retries are exhausted.
func Connect(ctx context.Context, dsn string, opts ConnectOptions) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, oops.Code("DB_CONNECT_FAILED").Errorf("database URL is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultConnectOptions().BaseDelay
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "parse database url").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(opts.MaxRetries, retry.NewExponential(opts.BaseDelay))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if pingErr := pool.Ping(ctx); pingErr != nil {
			opts.Logger.Warn("database not ready", "attempt", attempt, "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempt).
			Wrap(err)
	}
	return pool, nil
}

// Store is a UserRepository that owns its connection pool.
type Store struct {
	*UserRepository
	pool *pgxpool.Pool
}

// Open connects to dsn and returns a Store over the new pool.
func Open(ctx context.Context, dsn string, opts ConnectOptions) (*Store, error) {
	pool, err := Connect(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}
	return &Store{UserRepository: NewUserRepository(pool), pool: pool}, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
