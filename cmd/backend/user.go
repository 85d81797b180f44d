// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templatestack/backend/internal/auth"
)

func newUserCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register or log in a user against the database",
		Long: `Drive the auth service directly. The password is read from the first
line of stdin.`,
	}
	cmd.AddCommand(newUserRegisterCmd(deps))
	cmd.AddCommand(newUserLoginCmd(deps))
	return cmd
}

// authOutput is the printed form of a successful login or registration.
type authOutput struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

func newUserRegisterCmd(deps *Deps) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, deps, func(ctx context.Context, svc *auth.Service, password string) (*auth.AuthResult, error) {
				return svc.Register(ctx, name, email, password)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newUserLoginCmd(deps *Deps) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a fresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithService(cmd, deps, func(ctx context.Context, svc *auth.Service, password string) (*auth.AuthResult, error) {
				return svc.Login(ctx, email, password)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// runWithService builds the application, runs op with the password from
// stdin and prints the result. Failures show only the public message.
func runWithService(cmd *cobra.Command, deps *Deps, op func(context.Context, *auth.Service, string) (*auth.AuthResult, error)) error {
	deps = deps.withDefaults()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogging(cfg)

	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	application, err := deps.AppFactory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer application.Close()

	result, err := op(ctx, application.Service(), password)
	if err != nil {
		return fmt.Errorf("%s (status %d)", auth.PublicMessage(err), auth.HTTPStatus(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(authOutput{ //nolint:wrapcheck // stdout write
		UserID:    result.User.ID,
		Name:      result.User.Name,
		Email:     result.User.Email,
		Token:     result.Token,
		SessionID: result.SessionID,
	})
}
