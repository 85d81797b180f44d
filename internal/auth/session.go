// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// DefaultSessionTTL is used when Create is called without a positive TTL.
const DefaultSessionTTL = 12 * time.Hour

// SessionRecord is the server-side marker of a user's active session.
type SessionRecord struct {
	SessionID string
	ExpiresAt time.Time
}

// SessionRegistry tracks at most one session per user. Records expire lazily
// on Get or in bulk through CleanupExpired; the registry never sweeps on its
// own.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]SessionRecord // keyed by user ID
	now      func() time.Time
	newID    func() (string, error)
}

// SessionOption configures a SessionRegistry.
type SessionOption func(*SessionRegistry)

// WithSessionClock overrides the registry clock.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(r *SessionRegistry) { r.now = now }
}

// WithSessionIDGenerator overrides session ID generation.
func WithSessionIDGenerator(gen func() (string, error)) SessionOption {
	return func(r *SessionRegistry) { r.newID = gen }
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(opts ...SessionOption) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]SessionRecord),
		now:      time.Now,
		newID:    newSessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create starts a new session for the user, replacing any existing one, and
// returns its ID. A non-positive ttl means DefaultSessionTTL.
func (r *SessionRegistry) Create(userID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	id, err := r.newID()
	if err != nil {
		return "", Internal("Failed to create session",
			oops.Code("AUTH_SESSION_ID_FAILED").With("user_id", userID).Wrap(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = SessionRecord{SessionID: id, ExpiresAt: r.now().Add(ttl)}
	return id, nil
}

// Get returns the user's session if it has not expired. An expired record is
// deleted and reported as absent.
func (r *SessionRegistry) Get(userID string) (SessionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[userID]
	if !ok {
		return SessionRecord{}, false
	}
	if !rec.ExpiresAt.After(r.now()) {
		delete(r.sessions, userID)
		return SessionRecord{}, false
	}
	return rec, true
}

// Remove deletes the user's session. It reports whether one existed.
func (r *SessionRegistry) Remove(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	return ok
}

// CleanupExpired deletes every expired record and returns how many were removed.
func (r *SessionRegistry) CleanupExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for userID, rec := range r.sessions {
		if !rec.ExpiresAt.After(now) {
			delete(r.sessions, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of records held, including expired ones not yet swept.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
