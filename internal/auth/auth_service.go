// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/templatestack/backend/pkg/errutil"
)

const tracerName = "backend/auth"

// AuthResult is returned by a successful Login or Register.
type AuthResult struct {
	User      *User
	Token     string
	SessionID string
}

// Service provides the login, registration, logout and identity flows.
type Service struct {
	users      UserStore
	hasher     PasswordHasher
	tokens     *TokenCodec
	sessions   *SessionRegistry
	sessionTTL time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithSessionTTL sets the lifetime of session records created on login.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithTracerProvider sets the provider of the per-operation spans.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// NewAuthService creates a new Service.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens *TokenCodec, sessions *SessionRegistry, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("token codec is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("session registry is required")
	}
	s := &Service{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		sessions:   sessions,
		sessionTTL: DefaultSessionTTL,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("logger is required")
	}
	return s, nil
}

// dummyPasswordHash is verified against when a user doesn't exist so that
// unknown and known emails take the same time. It never matches a password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$12$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login authenticates by email and password, starts a session and issues a
// token. Unknown emails and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	ctx, done := s.begin(ctx, OpLogin)
	defer func() { done(err) }()

	email = NormalizeEmail(email)
	rec, lookupErr := s.users.FindUserByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	switch {
	case lookupErr == nil && rec != nil && rec.PasswordHash != "":
		targetHash = rec.PasswordHash
		userExists = true
	case lookupErr == nil, errors.Is(lookupErr, ErrNotFound):
	default:
		return nil, Internal("Internal server error",
			oops.Code("AUTH_LOGIN_FAILED").With("operation", "find user by email").Wrap(lookupErr))
	}

	valid, verifyErr := s.hasher.Verify(ctx, password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, Unauthorized(MsgInvalidCredentials, nil)
		}
		return nil, verifyErr
	}
	if !userExists || !valid {
		return nil, Unauthorized(MsgInvalidCredentials, nil)
	}

	return s.startSession(ctx, &rec.User)
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, name, email, password string) (result *AuthResult, err error) {
	ctx, done := s.begin(ctx, OpRegister)
	defer func() { done(err) }()

	email = NormalizeEmail(email)
	_, lookupErr := s.users.FindUserByEmail(ctx, email)
	switch {
	case lookupErr == nil:
		return nil, Conflict(MsgUserExists, nil)
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, Internal(MsgCreateUserFailed,
			oops.Code("AUTH_REGISTER_FAILED").With("operation", "find user by email").Wrap(lookupErr))
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.InsertUser(ctx, NewUser{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, Conflict(MsgUserExists, err)
		}
		return nil, Internal(MsgCreateUserFailed,
			oops.Code("AUTH_REGISTER_FAILED").With("operation", "insert user").Wrap(err))
	}
	if user == nil {
		return nil, Internal(MsgCreateUserFailed,
			oops.Code("AUTH_REGISTER_FAILED").Errorf("store returned no user"))
	}

	return s.startSession(ctx, user)
}

// Logout ends the session of the token's user. The token itself remains
// verifiable until it expires.
func (s *Service) Logout(ctx context.Context, token string) (err error) {
	ctx, done := s.begin(ctx, OpLogout)
	defer func() { done(err) }()

	payload, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if !s.sessions.Remove(payload.UserID) {
		s.logger.DebugContext(ctx, "logout without active session", "user_id", payload.UserID)
	}
	return nil
}

// Me returns the user identified by the token.
func (s *Service) Me(ctx context.Context, token string) (user *User, err error) {
	ctx, done := s.begin(ctx, OpMe)
	defer func() { done(err) }()

	payload, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err = s.users.FindUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Unauthorized(MsgUserNotFound, err)
		}
		return nil, Internal("Internal server error",
			oops.Code("AUTH_ME_FAILED").With("user_id", payload.UserID).Wrap(err))
	}
	return user, nil
}

func (s *Service) startSession(ctx context.Context, user *User) (*AuthResult, error) {
	sessionID, err := s.sessions.Create(user.ID, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(user.payload())
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("user.id", user.ID))
	s.logger.InfoContext(ctx, "session started", "user_id", user.ID, "session_id", sessionID)
	return &AuthResult{User: user, Token: token, SessionID: sessionID}, nil
}

// begin opens a span for op and returns a func that records the outcome.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "auth."+op)
	start := time.Now()
	return ctx, func(err error) {
		RecordOperation(op, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logFailure(ctx, op, err)
		}
		span.End()
	}
}

func (s *Service) logFailure(ctx context.Context, op string, err error) {
	kind := KindOf(err)
	switch kind {
	case KindUnauthorized, KindConflict, KindValidation:
		s.logger.WarnContext(ctx, "auth operation rejected",
			"operation", op, "kind", kind.String(), "error", err.Error())
	default:
		errutil.LogError(ctx, s.logger, "auth operation failed", err,
			"operation", op, "kind", kind.String())
	}
}
