// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"context"
	"strings"
)

// User is the public view of an account.
type User struct {
	ID    string
	Name  string
	Email string
}

// UserRecord is a user together with its stored password hash. Accounts
// created without a password have an empty PasswordHash and cannot log in.
type UserRecord struct {
	User
	PasswordHash string
}

// NewUser holds the fields for inserting an account.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// UserStore is the persistence contract the auth service depends on.
type UserStore interface {
	// FindUserByEmail returns the user with the email, compared
	// case-insensitively. Returns ErrNotFound if none exists.
	FindUserByEmail(ctx context.Context, email string) (*UserRecord, error)

	// FindUserByID returns the user with the ID. Returns ErrNotFound if none exists.
	FindUserByID(ctx context.Context, id string) (*User, error)

	// InsertUser creates a user and returns it with its assigned ID.
	// Returns a ConflictError if the email is already taken.
	InsertUser(ctx context.Context, u NewUser) (*User, error)
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) payload() TokenPayload {
	return TokenPayload{UserID: u.ID, Email: u.Email, Name: u.Name}
}
