// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// MinSecretLength is the shortest signing secret NewTokenCodec accepts.
const MinSecretLength = 32

const bearerPrefix = "Bearer "

// TokenPayload is the identity carried by a token.
type TokenPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// Claims is the full claim set of a verified token.
type Claims struct {
	TokenPayload
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256-signed identity tokens.
// Tokens are stateless and cannot be revoked before they expire.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithTokenClock overrides the clock used for issuing and expiry checks.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec creates a TokenCodec. The secret must be at least
// MinSecretLength characters and the ttl positive.
func NewTokenCodec(secret string, ttl time.Duration, opts ...TokenOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, Configuration("JWT secret must be at least 32 characters",
			oops.Code("AUTH_WEAK_SECRET").With("length", len(secret)).
				Errorf("secret shorter than %d characters", MinSecretLength))
	}
	if ttl <= 0 {
		return nil, Configuration("token lifetime must be positive",
			oops.Code("AUTH_INVALID_TTL").With("ttl", ttl).Errorf("non-positive token ttl"))
	}
	c := &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the payload, expiring TTL from now.
func (c *TokenCodec) Issue(payload TokenPayload) (string, error) {
	if payload.UserID == "" {
		return "", Internal("Failed to issue token",
			oops.Code("AUTH_TOKEN_NO_SUBJECT").Errorf("user id is required"))
	}
	now := c.now()
	claims := Claims{
		TokenPayload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Crypto("Failed to issue token",
			oops.Code("AUTH_TOKEN_SIGN_FAILED").With("user_id", payload.UserID).Wrap(err))
	}
	return signed, nil
}

// Verify checks the token's signature, algorithm and expiry and returns its
// payload. Every failure is reported as UnauthorizedError("Invalid token").
func (c *TokenCodec) Verify(token string) (*TokenPayload, error) {
	claims, err := c.Claims(token)
	if err != nil {
		return nil, err
	}
	return &claims.TokenPayload, nil
}

// Claims verifies the token like Verify and returns the full claim set.
func (c *TokenCodec) Claims(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, Unauthorized(MsgInvalidToken, oops.Code("AUTH_INVALID_TOKEN").Wrap(err))
	}
	if claims.UserID == "" {
		return nil, Unauthorized(MsgInvalidToken,
			oops.Code("AUTH_INVALID_TOKEN").Errorf("token has no user id"))
	}
	return &claims, nil
}

// ExtractFromHeader returns the token from an Authorization header value of
// the form "Bearer <token>". The remainder is returned as-is, even if empty.
func (c *TokenCodec) ExtractFromHeader(header string) (string, error) {
	return BearerToken(header)
}

// BearerToken is ExtractFromHeader without a codec.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", Unauthorized(MsgMissingToken,
			oops.Code("AUTH_MISSING_TOKEN").Errorf("authorization header missing bearer prefix"))
	}
	return header[len(bearerPrefix):], nil
}
