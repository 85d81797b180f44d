// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/templatestack/backend/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash",
		Long: `Read a single line from stdin and print its bcrypt hash using the
configured --bcrypt-cost. Useful for seeding accounts by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hasher, err := auth.NewBcryptHasher(auth.WithCost(cfg.BcryptCost), auth.WithConcurrency(1))
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			hash, err := hasher.Hash(cmd.Context(), password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required on stdin")
	}
	return password, nil
}
