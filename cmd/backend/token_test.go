// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatestack/backend/internal/auth"
)

func issueToken(t *testing.T, args ...string) string {
	t.Helper()
	base := []string{"token", "issue", "--jwt-secret", testSecret}
	out, err := execute(context.Background(), nil, "", append(base, args...)...)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func inspectToken(t *testing.T, token string) (inspection, error) {
	t.Helper()
	out, err := execute(context.Background(), nil, "", "token", "inspect", "--jwt-secret", testSecret, token)
	if err != nil {
		return inspection{}, err
	}
	var got inspection
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	return got, nil
}

func TestToken_IssueThenInspect(t *testing.T) {
	isolate(t)

	token := issueToken(t, "--user-id", "u1", "--email", "ada@example.com", "--name", "Ada", "--jwt-expires-in", "2h")
	require.NotEmpty(t, token)

	got, err := inspectToken(t, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "u1", got.Subject)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 2*time.Hour, got.ExpiresAt.Sub(got.IssuedAt))
}

func TestToken_InspectAcceptsBearerHeader(t *testing.T) {
	isolate(t)

	token := issueToken(t, "--user-id", "u1")

	got, err := inspectToken(t, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestToken_InspectRejectsBadInput(t *testing.T) {
	isolate(t)
	token := issueToken(t, "--user-id", "u1")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tampered", token[:len(token)-2] + "xx", auth.MsgInvalidToken},
		{"garbage", "not-a-token", auth.MsgInvalidToken},
		{"bearer without space", "Bearer" + token, auth.MsgMissingToken},
		{"empty bearer", "Bearer ", auth.MsgInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inspectToken(t, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrUnauthorized)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestToken_InspectWithOtherSecretFails(t *testing.T) {
	isolate(t)
	token := issueToken(t, "--user-id", "u1")

	_, err := execute(context.Background(), nil, "", "token", "inspect",
		"--jwt-secret", strings.Repeat("z", 32), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestToken_IssueRequiresUserID(t *testing.T) {
	isolate(t)

	_, err := execute(context.Background(), nil, "", "token", "issue", "--jwt-secret", testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user-id")
}

func TestToken_RequiresValidSecret(t *testing.T) {
	isolate(t)

	_, err := execute(context.Background(), nil, "", "token", "issue", "--user-id", "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrConfiguration)
}
