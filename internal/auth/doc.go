// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package auth provides the authentication and session-token core.
//
// # Components
//
//   - BcryptHasher - salted one-way password hashing and verification
//   - TokenCodec - issues and verifies signed, time-limited identity tokens
//   - SessionRegistry - in-memory, single-session-per-user records with expiry
//   - Service - login, registration, logout and "who am I" flows
//
// The Service consumes a UserStore for user records. Route handlers call the
// Service and map returned errors with HTTPStatus.
//
// # Token revocation
//
// Identity tokens are stateless. Logout removes the user's session record but
// the token itself stays verifiable until it expires.
//
// # Sessions
//
// The registry never sweeps itself. Expired records are dropped lazily on Get
// or in bulk by CleanupExpired, which the process bootstrap runs through a
// SessionSweeper.
package auth
