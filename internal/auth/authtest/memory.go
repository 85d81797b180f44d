// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package authtest provides test helpers for the auth package.
package authtest

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/templatestack/backend/internal/auth"
)

// MemoryStore is an in-memory auth.UserStore that can also be pinged and
// closed, so it stands in for the Postgres store.
type MemoryStore struct {
	mu      sync.Mutex
	byEmail map[string]*auth.UserRecord
	pingErr error
	closed  bool
}

var _ auth.UserStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]*auth.UserRecord)}
}

// FindUserByEmail returns the user with the email, compared case-insensitively.
func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*auth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// FindUserByID returns the user with the id.
func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.byEmail {
		if rec.ID == id {
			u := rec.User
			return &u, nil
		}
	}
	return nil, auth.ErrNotFound
}

// InsertUser stores u under a new ULID.
func (s *MemoryStore) InsertUser(_ context.Context, u auth.NewUser) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := auth.NormalizeEmail(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return nil, auth.Conflict(auth.MsgUserExists, nil)
	}
	rec := &auth.UserRecord{
		User: auth.User{
			ID:    ulid.Make().String(),
			Name:  u.Name,
			Email: key,
		},
		PasswordHash: u.PasswordHash,
	}
	s.byEmail[key] = rec
	user := rec.User
	return &user, nil
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}

// FailPing makes Ping return err; nil restores it.
func (s *MemoryStore) FailPing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Ping returns the error set by FailPing.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

// Close marks the store closed.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether Close was called.
func (s *MemoryStore) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
