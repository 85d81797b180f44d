// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

// Package xdg provides XDG Base Directory paths for the backend.
package xdg

import (
	"errors"
	"os"
	"path/filepath"
)

const appName = "backend"

// ConfigDir returns the XDG config directory for the backend.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("neither XDG_CONFIG_HOME nor HOME is set")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// ConfigFile returns the path of the default config file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfigFile returns ConfigFile if it exists as a regular file, or ""
// otherwise.
func DefaultConfigFile() string {
	path, err := ConfigFile()
	if err != nil {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return path
}
