// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/templatestack/backend/internal/config"
)

const redacted = "<redacted>"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigCheckCmd())
	cmd.AddCommand(newConfigSchemaCmd())
	return cmd
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the effective configuration and print it with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			out, err := renderRedacted(cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprint(w, out)
			if err := cfg.RequireDatabase(); err != nil {
				_, _ = fmt.Fprintln(w, "warning: database_url is not set; serve and user commands will fail")
			}
			_, _ = fmt.Fprintln(w, "configuration OK")
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// renderRedacted renders cfg as YAML keyed like the config file, with the
// signing secret and any database password hidden.
func renderRedacted(cfg *config.Config) (string, error) {
	c := *cfg
	if c.JWTSecret != "" {
		c.JWTSecret = redacted
	}
	if c.DatabaseURL != "" {
		if u, err := url.Parse(c.DatabaseURL); err == nil {
			c.DatabaseURL = u.Redacted()
		} else {
			c.DatabaseURL = redacted
		}
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	return string(out), nil
}
