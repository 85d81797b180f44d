// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"context"
	"errors"
	"runtime"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(ctx context.Context, password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher using bcrypt. The number of bcrypt
// computations running at once is capped by a weighted semaphore.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// HasherOption configures a BcryptHasher.
type HasherOption func(*hasherConfig)

type hasherConfig struct {
	cost        int
	concurrency int64
}

// WithCost sets the bcrypt work factor.
func WithCost(cost int) HasherOption {
	return func(c *hasherConfig) { c.cost = cost }
}

// WithConcurrency caps concurrent hash operations. Values below 1 fall back
// to GOMAXPROCS.
func WithConcurrency(n int) HasherOption {
	return func(c *hasherConfig) { c.concurrency = int64(n) }
}

// NewBcryptHasher creates a BcryptHasher.
func NewBcryptHasher(opts ...HasherOption) (*BcryptHasher, error) {
	cfg := hasherConfig{cost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cost < bcrypt.MinCost || cfg.cost > bcrypt.MaxCost {
		return nil, Configuration("invalid bcrypt cost",
			oops.Code("AUTH_INVALID_COST").With("cost", cfg.cost).
				Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = int64(runtime.GOMAXPROCS(0))
	}
	return &BcryptHasher{cost: cfg.cost, sem: semaphore.NewWeighted(cfg.concurrency)}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", Validation("Password cannot be empty",
			oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty"))
	}
	if len(password) > maxPasswordBytes {
		return "", Validation("Password is too long",
			oops.Code("AUTH_PASSWORD_TOO_LONG").With("bytes", len(password)).
				Errorf("password exceeds %d bytes", maxPasswordBytes))
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", Internal("Failed to hash password", oops.Code("AUTH_HASH_CANCELLED").Wrap(err))
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", Crypto("Failed to hash password", oops.Code("AUTH_HASH_FAILED").Wrap(err))
	}
	return string(hash), nil
}

// Verify checks if the password matches the bcrypt hash.
func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, Internal("Failed to verify password", oops.Code("AUTH_HASH_CANCELLED").Wrap(err))
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, Crypto("Failed to verify password", oops.Code("AUTH_INVALID_HASH").Wrap(err))
	}
}
