// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired sessions are removed when no
// interval is configured.
const DefaultSweepInterval = 10 * time.Minute

// SessionSweeper periodically removes expired records from a SessionRegistry.
type SessionSweeper struct {
	sessions *SessionRegistry
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionSweeper creates a sweeper. A non-positive interval means
// DefaultSweepInterval; a nil logger means slog.Default().
func NewSessionSweeper(sessions *SessionRegistry, interval time.Duration, logger *slog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweeper{sessions: sessions, interval: interval, logger: logger}
}

// SweepOnce removes expired records and returns how many were removed.
func (w *SessionSweeper) SweepOnce() int {
	removed := w.sessions.CleanupExpired()
	if removed > 0 {
		SessionsSwept.Add(float64(removed))
		w.logger.Debug("swept expired sessions", "count", removed)
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (w *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce()
		}
	}
}

// Start runs the sweeper in a background goroutine.
func (w *SessionSweeper) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Run(ctx)
	}()
}

// Stop stops a started sweeper and waits for it to exit.
func (w *SessionSweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
