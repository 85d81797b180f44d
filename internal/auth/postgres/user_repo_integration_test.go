// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

//go:build integration

package postgres_test

import (
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"golang.org/x/crypto/bcrypt"

	"github.com/templatestack/backend/internal/auth"
	authpg "github.com/templatestack/backend/internal/auth/postgres"
)

var _ = Describe("UserRepository", func() {
	var repo *authpg.UserRepository

	BeforeEach(func() {
		repo = authpg.NewUserRepository(testPool)
		_, err := testPool.Exec(suiteCtx, `TRUNCATE users`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips an inserted user", func() {
		created, err := repo.InsertUser(suiteCtx, auth.NewUser{
			Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$12$hash",
		})
		Expect(err).NotTo(HaveOccurred())
		_, err = uuid.Parse(created.ID)
		Expect(err).NotTo(HaveOccurred())

		byID, err := repo.FindUserByID(suiteCtx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID).To(Equal(created))

		byEmail, err := repo.FindUserByEmail(suiteCtx, "ADA@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmail.ID).To(Equal(created.ID))
		Expect(byEmail.PasswordHash).To(Equal("$2a$12$hash"))
	})

	It("reports missing users as not found", func() {
		_, err := repo.FindUserByID(suiteCtx, uuid.NewString())
		Expect(err).To(MatchError(auth.ErrNotFound))

		_, err = repo.FindUserByID(suiteCtx, "01J00000000000000000000000")
		Expect(err).To(MatchError(auth.ErrNotFound))

		_, err = repo.FindUserByEmail(suiteCtx, "nobody@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("rejects a duplicate email regardless of case", func() {
		_, err := repo.InsertUser(suiteCtx, auth.NewUser{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"})
		Expect(err).NotTo(HaveOccurred())

		_, err = repo.InsertUser(suiteCtx, auth.NewUser{Name: "Other", Email: "ADA@example.com", PasswordHash: "h"})
		Expect(err).To(MatchError(auth.ErrConflict))
		Expect(auth.HTTPStatus(err)).To(Equal(409))
	})
})

var _ = Describe("auth.Service against Postgres", func() {
	var svc *auth.Service

	BeforeEach(func() {
		_, err := testPool.Exec(suiteCtx, `TRUNCATE users`)
		Expect(err).NotTo(HaveOccurred())

		hasher, err := auth.NewBcryptHasher(auth.WithCost(bcrypt.MinCost))
		Expect(err).NotTo(HaveOccurred())
		tokens, err := auth.NewTokenCodec("integration-secret-0123456789abcdef", time.Hour)
		Expect(err).NotTo(HaveOccurred())

		svc, err = auth.NewAuthService(authpg.NewUserRepository(testPool), hasher, tokens, auth.NewSessionRegistry())
		Expect(err).NotTo(HaveOccurred())
	})

	It("registers, logs in, identifies and logs out", func() {
		reg, err := svc.Register(suiteCtx, "Ada", "ada@example.com", "correct horse")
		Expect(err).NotTo(HaveOccurred())

		login, err := svc.Login(suiteCtx, "Ada@Example.com", "correct horse")
		Expect(err).NotTo(HaveOccurred())
		Expect(login.User.ID).To(Equal(reg.User.ID))

		me, err := svc.Me(suiteCtx, login.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(me.Name).To(Equal("Ada"))

		Expect(svc.Logout(suiteCtx, login.Token)).To(Succeed())
	})

	It("refuses a second registration for the same email", func() {
		_, err := svc.Register(suiteCtx, "Ada", "ada@example.com", "pw")
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Register(suiteCtx, "Ada again", "ada@example.com", "pw")
		Expect(err).To(MatchError(auth.ErrConflict))
		Expect(err.Error()).To(Equal("User with this email already exists"))
	})

	It("refuses login for an account without a password", func() {
		_, err := testPool.Exec(suiteCtx,
			`INSERT INTO users (name, email) VALUES ('Ada', 'ada@example.com')`)
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Login(suiteCtx, "ada@example.com", "anything")
		Expect(err).To(MatchError(auth.ErrUnauthorized))
		Expect(auth.HTTPStatus(err)).To(Equal(401))
	})

	It("rejects a wrong password", func() {
		_, err := svc.Register(suiteCtx, "Ada", "ada@example.com", "pw")
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.Login(suiteCtx, "ada@example.com", "nope")
		Expect(err).To(MatchError(auth.ErrUnauthorized))
		Expect(err.Error()).To(Equal("Invalid email or password"))
	})
})

var _ = Describe("Store", func() {
	It("opens, pings and closes its own pool", func() {
		store, err := authpg.Open(suiteCtx, testDSN, authpg.DefaultConnectOptions())
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Ping(suiteCtx)).To(Succeed())
		_, err = store.FindUserByEmail(suiteCtx, "nobody@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))

		store.Close()
		Expect(store.Ping(suiteCtx)).NotTo(Succeed())
	})
})
