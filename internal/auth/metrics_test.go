// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatestack/backend/internal/auth"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(auth.Operations.WithLabelValues(auth.OpLogin, auth.StatusUnauthorized))

	auth.RecordOperation(auth.OpLogin, auth.Unauthorized("Invalid email or password", nil), time.Millisecond)

	after := testutil.ToFloat64(auth.Operations.WithLabelValues(auth.OpLogin, auth.StatusUnauthorized))
	assert.InDelta(t, before+1, after, 0.0001)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { auth.RegisterMetrics(reg) })

	// Duplicate registration panics per prometheus convention.
	assert.Panics(t, func() { auth.RegisterMetrics(reg) })
}

func TestRegisterSessionGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	sessions := auth.NewSessionRegistry()
	auth.RegisterSessionGauge(reg, sessions)

	_, err := sessions.Create("user-1", time.Hour)
	require.NoError(t, err)
	_, err = sessions.Create("user-2", time.Hour)
	require.NoError(t, err)

	expected := `
# HELP backend_auth_sessions Number of session records currently held
# TYPE backend_auth_sessions gauge
backend_auth_sessions 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "backend_auth_sessions"))
}
