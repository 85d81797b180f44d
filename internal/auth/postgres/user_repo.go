// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package postgres provides PostgreSQL implementations of the auth stores.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/oops"

	"github.com/templatestack/backend/internal/auth"
)

// poolIface is the subset of *pgxpool.Pool used by the repositories.
type poolIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserStore using PostgreSQL.
//
// The users table has a uuid primary key assigned by the database and a
// nullable salted_password_hash.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ auth.UserStore = (*UserRepository)(nil)

// FindUserByEmail retrieves a user by email (case-insensitive).
// A NULL password hash is returned as an empty PasswordHash.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email, salted_password_hash
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email))

	var (
		rec  auth.UserRecord
		hash pgtype.Text
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	if hash.Valid {
		rec.PasswordHash = hash.String
	}
	return &rec, nil
}

// FindUserByID retrieves a user by ID. An ID that is not a UUID cannot match
// any row and is reported as not found.
func (r *UserRepository) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrapf(auth.ErrNotFound, "malformed user id")
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email
		FROM users
		WHERE id = $1::uuid
	`, parsed.String())

	var u auth.User
	err = row.Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return &u, nil
}

// InsertUser stores a new user and returns it with the ID the database
// assigned. A duplicate email is reported as an auth ConflictError.
func (r *UserRepository) InsertUser(ctx context.Context, nu auth.NewUser) (*auth.User, error) {
	u := &auth.User{Name: nu.Name, Email: nu.Email}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, salted_password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, nu.Name, nu.Email, nu.PasswordHash).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, auth.Conflict(auth.MsgUserExists, oops.Code("USER_EMAIL_TAKEN").
				With("email", nu.Email).
				With("constraint", pgErr.ConstraintName).
				Wrap(err))
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", nu.Email).
			Wrap(err)
	}
	return u, nil
}
