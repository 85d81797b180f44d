// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/templatestack/backend/internal/auth"
)

// MockUserStore is a mock auth.UserStore.
type MockUserStore struct {
	mock.Mock
}

// NewMockUserStore creates a MockUserStore whose expectations are asserted
// when the test ends.
func NewMockUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserStore {
	m := &MockUserStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// FindUserByEmail implements auth.UserStore.
func (m *MockUserStore) FindUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	ret := m.Called(ctx, email)
	var rec *auth.UserRecord
	if v := ret.Get(0); v != nil {
		rec = v.(*auth.UserRecord)
	}
	return rec, ret.Error(1)
}

// FindUserByID implements auth.UserStore.
func (m *MockUserStore) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	ret := m.Called(ctx, id)
	var u *auth.User
	if v := ret.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, ret.Error(1)
}

// InsertUser implements auth.UserStore.
func (m *MockUserStore) InsertUser(ctx context.Context, nu auth.NewUser) (*auth.User, error) {
	ret := m.Called(ctx, nu)
	var u *auth.User
	if v := ret.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, ret.Error(1)
}

// MockPasswordHasher is a mock auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations are
// asserted when the test ends.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	ret := m.Called(ctx, password)
	return ret.String(0), ret.Error(1)
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	ret := m.Called(ctx, password, hash)
	return ret.Bool(0), ret.Error(1)
}

var (
	_ auth.UserStore      = (*MockUserStore)(nil)
	_ auth.PasswordHasher = (*MockPasswordHasher)(nil)
)
